package core

// Route is an entry of the website route surface.
type Route struct {
	Path  string `json:"path"`
	Title string `json:"title"`
	Gated bool   `json:"gated"`
}

const (
	LoginPath = "/sistem-masuk"
	AdminPath = "/sistem-admin-al-hikmah-2025"
)

// Routes is the website route surface. Gated routes sit behind the admin access-code gate and the role check.
var Routes = []Route{
	{Path: "/", Title: "Beranda"},
	{Path: "/program", Title: "Program"},
	{Path: "/pengajar", Title: "Pengajar"},
	{Path: "/lulusan", Title: "Lulusan"},
	{Path: "/album", Title: "Album"},
	{Path: "/spmb", Title: "SPMB"},
	{Path: "/pesan", Title: "Pesan"},
	{Path: "/tentang", Title: "Tentang"},
	{Path: LoginPath, Title: "Masuk", Gated: true},
	{Path: AdminPath, Title: "Admin", Gated: true},
}
