package out

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/message"

	"sleeptrack/internal/modules/sleep/domain"
	sleepout "sleeptrack/internal/modules/sleep/port/out"
)

const historyTimeLayout = "Mon Jan 02 2006 15:04"

// TextHistoryFormatter renders sessions as localized plain text, one block per
// session.
type TextHistoryFormatter struct {
	printer  *message.Printer
	location *time.Location
}

var _ sleepout.HistoryFormatter = TextHistoryFormatter{}

func NewTextHistoryFormatter(printer *message.Printer, location *time.Location) TextHistoryFormatter {
	if location == nil {
		location = time.Local
	}
	return TextHistoryFormatter{printer: printer, location: location}
}

func (f TextHistoryFormatter) Format(sessions []domain.Session) string {
	p := f.printer
	if len(sessions) == 0 {
		return p.Sprintf("history.empty") + "\n"
	}
	b := strings.Builder{}
	b.WriteString(p.Sprintf("history.title"))
	b.WriteString("\n")
	for _, s := range sessions {
		b.WriteString("\n")
		fmt.Fprintf(&b, "#%d\n", s.ID)
		fmt.Fprintf(&b, "  %s: %s\n", p.Sprintf("history.start"), s.StartTime.In(f.location).Format(historyTimeLayout))
		if s.IsOpen() {
			fmt.Fprintf(&b, "  %s: %s\n", p.Sprintf("history.end"), p.Sprintf("history.in_progress"))
		} else {
			fmt.Fprintf(&b, "  %s: %s\n", p.Sprintf("history.end"), s.EndTime.In(f.location).Format(historyTimeLayout))
			fmt.Fprintf(&b, "  %s: %s\n", p.Sprintf("history.duration"), FormatDuration(s.Duration()))
		}
		fmt.Fprintf(&b, "  %s: %s\n", p.Sprintf("history.quality"), QualityLabel(p, s.Quality))
	}
	return b.String()
}

// QualityLabel returns the localized name of a rating.
func QualityLabel(p *message.Printer, quality int) string {
	if !domain.ValidQuality(quality) {
		return p.Sprintf("quality.unset")
	}
	return p.Sprintf(fmt.Sprintf("quality.%d", quality))
}

// FormatDuration renders d as hours:minutes:seconds.
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
