package main

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func statusColor(status string) string {
	switch status {
	case "completed":
		return ansiGreen
	case "failed":
		return ansiRed
	case "running":
		return ansiYellow
	default:
		return ansiBlue
	}
}
