package model

// Entity is implemented by every record the console can list. Field names are
// the JSON keys used by the platform API, so the same names are used in
// configuration, in toggle payloads and on the command line.
type Entity[T any] interface {
	Key() string
	Label() string
	Text(field string) (string, bool)
	Flag(field string) (bool, bool)
	WithFlag(field string, value bool) (T, bool)
	TextFields() []string
	FlagFields() []string
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
