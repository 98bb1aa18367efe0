package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"healthmon/internal/models"
	"healthmon/internal/profile"
)

const (
	rule      = "================================================"
	thinRule  = "------------------------------------------------"
	tsLayout  = "2006-01-02T15:04:05.000Z07:00"
	debugPort = 9229
)

type styles struct {
	color   bool
	title   lipgloss.Style
	section lipgloss.Style
	warn    lipgloss.Style
	ok      lipgloss.Style
	faint   lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		color:   color,
		title:   r.NewStyle().Foreground(lipgloss.Color("63")).Bold(true),
		section: r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		ok:      r.NewStyle().Foreground(lipgloss.Color("46")),
		faint:   r.NewStyle().Faint(true),
	}
}

func (s styles) paint(st lipgloss.Style, text string) string {
	if !s.color {
		return text
	}
	return st.Render(text)
}

type block struct {
	s styles
	b strings.Builder
}

func newBlock(s styles) *block { return &block{s: s} }

func (b *block) line(format string, args ...any) {
	fmt.Fprintf(&b.b, format, args...)
	b.b.WriteByte('\n')
}

func (b *block) styled(st lipgloss.Style, format string, args ...any) {
	b.b.WriteString(b.s.paint(st, fmt.Sprintf(format, args...)))
	b.b.WriteByte('\n')
}

func (b *block) String() string { return b.b.String() }

func (b *block) health(m models.MetricsSample, debug bool) {
	b.line("")
	b.styled(b.s.title, "[%s] === SYSTEM HEALTH CHECK ===", m.TS.UTC().Format(tsLayout))
	b.line("   CPU: %.2f%%", m.CPUPct)
	b.line("   Memory: %.2f%%", m.MemPct)
	b.line("   Disk: %.2f%% used", m.DiskPct)
	if debug {
		b.styled(b.s.faint, "   Hot reload: Active")
		b.styled(b.s.faint, "   Debug port: %d", debugPort)
	}
}

func (b *block) healthUnavailable(err error) {
	b.line("")
	b.styled(b.s.title, "=== SYSTEM HEALTH CHECK ===")
	b.styled(b.s.warn, "   Metrics unavailable: %v", err)
}

func (b *block) analysis(targets []models.TargetStatus, predictiveAlert bool, monitored int) {
	anomalies := 0
	for _, t := range targets {
		if t.Health == models.HealthDegraded {
			anomalies++
		}
	}
	if predictiveAlert {
		anomalies++
	}
	b.line("")
	b.styled(b.s.section, "AI Analysis:")
	b.line("   ✓ Pattern recognition: ACTIVE")
	if anomalies == 0 {
		b.line("   ✓ Anomaly detection: NO ANOMALIES")
	} else {
		b.line("   ✓ Anomaly detection: %d ANOMALIES", anomalies)
	}
	b.line("   ✓ Cloud targets monitored: %d", monitored)
}

func (b *block) target(st models.TargetStatus) {
	health := b.s.paint(b.s.ok, string(st.Health))
	if st.Health != models.HealthHealthy {
		health = b.s.paint(b.s.warn, string(st.Health))
	}
	b.line("")
	b.styled(b.s.section, "%s Status:", strings.ToUpper(st.Target))
	b.line("   ✓ Instances: %d", st.Instances)
	b.line("   ✓ Load: %.2f%%", st.LoadPct)
	b.line("   ✓ Health: %s", health)
}

func (b *block) forecast(fc models.Forecast, alert bool) {
	b.line("")
	b.styled(b.s.section, "AI Prediction Engine:")
	b.line("Predicted metrics in %.0fs:", fc.Window.Seconds())
	b.line("   CPU: %.2f%% (confidence: %.2f%%)", fc.CPUPct, fc.Confidence)
	b.line("   Memory: %.2f%% (confidence: %.2f%%)", fc.MemPct, fc.Confidence)
	b.line("   Traffic: %.0f req/s (confidence: %.2f%%)", fc.TrafficRPS, fc.Confidence)
	if alert {
		b.styled(b.s.warn, "PREDICTIVE ALERT: High CPU expected - Pre-scaling initiated")
	}
}

func (b *block) status(st models.Status, ai bool) {
	b.line("")
	switch st {
	case models.StatusWarning:
		b.styled(b.s.warn, "System Status: WARNING - High resource usage")
		if ai {
			b.line("   AI auto-scaling triggered")
		}
	case models.StatusOptimal:
		b.styled(b.s.ok, "System Status: OPTIMAL")
	default:
		b.styled(b.s.faint, "System Status: UNKNOWN - metrics unavailable")
	}
	b.line(rule)
}

func banner(s styles, p profile.Profile) string {
	b := newBlock(s)
	ai := "DISABLED"
	if p.AIEnabled {
		ai = "ENABLED"
	}
	b.line(rule)
	b.styled(s.title, "DevOps Simulator - System Monitor (%s Mode)", strings.ToUpper(p.Name))
	b.line("AI Monitoring: %s", ai)
	b.line(rule)
	if p.AIEnabled {
		b.line("Loading AI models...")
		if p.ModelPath != "" {
			b.line("✓ Model loaded: %s", p.ModelPath)
		}
		b.line("✓ Anomaly detection ready")
	}
	b.line("")
	b.line("Monitoring interval: %dms", p.Interval.Milliseconds())
	b.line("Alert threshold: %g%%", p.AlertThreshold)
	if len(p.CloudTargets) > 0 {
		b.line("Cloud providers: %s", strings.Join(p.CloudTargets, ", "))
	}
	b.line(thinRule)
	return b.String()
}
