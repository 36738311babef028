package gen

import "strings"

func write(sb *strings.Builder, s ...string) {
	for _, str := range s {
		sb.WriteString(str)
	}
}
func writeln(sb *strings.Builder, s ...string) {
	for _, str := range s {
		sb.WriteString(str)
	}
	sb.WriteByte('\n')
}

const shellSpecial = " \t\n'\"\\$`&|;<>()*?[]#~{}!"

// shellQuote quotes arg for the platform shell when it needs it
func shellQuote(arg, goos string) string {
	if goos == "windows" {
		if arg != "" && !strings.ContainsAny(arg, " \t\"") {
			return arg
		}
		return `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
	}
	if arg != "" && !strings.ContainsAny(arg, shellSpecial) {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

func commandLine(path string, args []string, goos string) string {
	var sb strings.Builder
	sb.WriteString(shellQuote(path, goos))
	for _, arg := range args {
		sb.WriteByte(' ')
		sb.WriteString(shellQuote(arg, goos))
	}
	return sb.String()
}
