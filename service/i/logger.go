package i

// Logger is the levelled logger every service writes to.
type Logger interface {
	Info(string)
	Warning(string)
	Error(string)
}
