package cli

import (
	"errors"
	"strings"

	"github.com/gitquest-dev/gitquest/internal/daemon"
)

const barWidth = 20 // Characters for progress bars

var errNoUser = errors.New("no user configured: pass --user or set user.login in config.toml")

// resolveUser picks the user login: --user flag first, then config.
func resolveUser(d *daemon.Daemon) (string, error) {
	if flagUser != "" {
		return flagUser, nil
	}
	if d.Config.User.Login != "" {
		return d.Config.User.Login, nil
	}
	return "", errNoUser
}

// renderBar draws a [=====>....] bar for a 0-100 percentage.
func renderBar(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	if filled == barWidth {
		return "[" + strings.Repeat("=", filled) + "]"
	}
	if filled > 0 {
		return "[" + strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty) + "]"
	}
	return "[" + strings.Repeat(".", barWidth) + "]"
}
