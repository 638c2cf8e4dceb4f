package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

func sizeText(w, h int) string {
	return fmt.Sprintf("Width = %d Height = %d", w, h)
}

// centered pads s on the left so it sits in the middle of width cells.
func centered(s string, width int) string {
	pad := (width - ansi.StringWidth(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

// bytesText formats a byte count with binary units, e.g. "1.5 GiB".
func bytesText(n uint64) string {
	return humanize.IBytes(n)
}

// rateText formats a transfer rate in bytes per second.
func rateText(bps float64) string {
	if bps < 0 {
		bps = 0
	}
	return humanize.IBytes(uint64(bps)) + "/s"
}

func percentText(p float64) string {
	return fmt.Sprintf("%3.0f%%", p)
}

// uptimeText formats d as "3d 04:05" or "04:05:06".
func uptimeText(d time.Duration) string {
	d = d.Round(time.Second)
	days := int(d.Hours()) / 24
	h := int(d.Hours()) % 24
	m := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d", days, h, m)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, int(d.Seconds())%60)
}
