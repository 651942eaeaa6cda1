package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/agbru/mbcalc/internal/ui"
)

// flagGroups orders the usage output; flags not listed fall into "Other".
var flagGroups = []struct {
	title string
	names []string
}{
	{"View", []string{"x", "y", "size", "columns", "rows", "max-iter", "words"}},
	{"Engine", []string{"tier", "width", "workers", "quality", "timeout"}},
	{"Calibration", []string{"calibrate", "auto-calibrate", "calibration-profile"}},
	{"Output", []string{"show", "json", "output", "o", "quiet", "q", "no-color"}},
	{"Server", []string{"server", "port"}},
}

// setCustomUsage installs a grouped, themed usage function on fs.
func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		t := ui.GetCurrentTheme()
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			t = ui.NoColorTheme
		}
		out := fs.Output()

		fmt.Fprintf(out, "\n%sMandelbrot Calculator%s\n", t.Bold, t.Reset)
		fmt.Fprintf(out, "Escape-time renderer with arbitrary-precision fixed-point arithmetic.\n\n")
		fmt.Fprintf(out, "%sUsage:%s\n  %s [flags]\n", t.Warning, t.Reset, fs.Name())

		printed := make(map[string]bool)
		printFlag := func(f *flag.Flag) {
			name, usage := flag.UnquoteUsage(f)
			sig := "-" + f.Name
			if name != "" {
				sig += " " + name
			}
			fmt.Fprintf(out, "  %s%-28s%s %s", t.Primary, sig, t.Reset, usage)
			if f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false" {
				fmt.Fprintf(out, " %s(default %s)%s", t.Secondary, f.DefValue, t.Reset)
			}
			fmt.Fprintln(out)
			printed[f.Name] = true
		}

		for _, g := range flagGroups {
			fmt.Fprintf(out, "\n%s%s:%s\n", t.Warning, g.title, t.Reset)
			for _, n := range g.names {
				if f := fs.Lookup(n); f != nil {
					printFlag(f)
				}
			}
		}

		var rest []*flag.Flag
		fs.VisitAll(func(f *flag.Flag) {
			if !printed[f.Name] {
				rest = append(rest, f)
			}
		})
		if len(rest) > 0 {
			fmt.Fprintf(out, "\n%sOther:%s\n", t.Warning, t.Reset)
			for _, f := range rest {
				printFlag(f)
			}
		}
		fmt.Fprintf(out, "\nEvery flag can also be set through %s<NAME> (e.g. %sMAX_ITER=2000).\n\n", EnvPrefix, EnvPrefix)
	}
}
