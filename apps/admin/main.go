package main

import (
	"log"
	"os"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	logsvc "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/services/logger"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/storage/database"
	sqlxrepos "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal("creating database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	// start CLI
	cli := commandLine{
		db:      db.DB,
		usrRepo: sqlxrepos.NewUserRepository(db),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
