package core

// Program is one of the education programs run by the foundation.
type Program string

const (
	ProgramTKATPA    Program = "TKA/TPA"
	ProgramPAUDKober Program = "PAUD/KOBER"
	ProgramDiniyah   Program = "Diniyah"
)

var Programs = []Program{ProgramTKATPA, ProgramPAUDKober, ProgramDiniyah}

func (p Program) IsValid() bool {
	for _, prog := range Programs {
		if p == prog {
			return true
		}
	}
	return false
}
