package main

import (
	"context"
	"expvar"
	"fmt"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof"

	"go.uber.org/dig"

	dig_container "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/apps/api/di/dig"
	echoapi "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/apps/api/echo"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	digestsvc "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/services/digest"
	notifysvc "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/services/notify"
)

type appParams struct {
	dig.In

	Conf     *core.Config
	Logger   core.Logger
	DBLogger core.Logger `name:"dbLogger"`
	DB       io.Closer   `name:"db"`
	Hub      *notifysvc.Hub
	Digest   *digestsvc.Job
	Server   *echoapi.Server
}

func main() {
	c := dig_container.New()
	must(c.Invoke(run))
}

func run(p appParams) {
	conf, apiLogger, server := p.Conf, p.Logger, p.Server

	// =========================================================================
	// Initialize App

	apiLogger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))

	defer func() {
		if err := p.DB.Close(); err != nil {
			p.DBLogger.Fatal("Failed to close", err)
		}
	}()
	defer apiLogger.Info("Application stopped")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Hub.Run(ctx)

	if conf.Digest.Enabled {
		scheduler, err := digestsvc.NewScheduler(conf.Digest.Schedule, p.Digest, apiLogger)
		if err != nil {
			apiLogger.Fatal(fmt.Sprintf("digest: %v", err), err)
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			apiLogger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		apiLogger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		apiLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shut down and shed load
		if err := server.Shutdown(ctx); err != nil {
			apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				apiLogger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
