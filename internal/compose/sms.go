// Package compose renders notification bodies and subjects.
package compose

import (
	"fmt"
	"strings"

	"github.com/starford/dosebell/internal/calendar"
	"github.com/starford/dosebell/internal/models"
)

// DefaultFallbackText is the legacy-mode body when nothing is due.
const DefaultFallbackText = "Daily update ✅ - No specific reminder for today!"

// DueMessage carries the display fields of a due reminder.
type DueMessage struct {
	Name    string
	AgeDays int
	HasAge  bool
	Entry   models.Entry
}

// AgeLine renders the age, or "" when it is unknown or negative.
func AgeLine(days int, ok bool) string {
	if !ok || days < 0 {
		return ""
	}
	return calendar.Breakdown(days).String()
}

func ageSuffix(days int, ok bool) string {
	line := AgeLine(days, ok)
	if line == "" {
		return ""
	}
	return "\n📅 Age: " + line
}

func entryBlock(e models.Entry) string {
	return fmt.Sprintf("💊 Tablet: %s\n🕐 Time: %s\n📝 Notes: %s", e.Tablet, e.Time, e.Notes)
}

// SMSDue renders the per-recipient reminder text.
func SMSDue(m DueMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Hello %s!", m.Name)
	b.WriteString(ageSuffix(m.AgeDays, m.HasAge))
	b.WriteString("\n\n")
	b.WriteString(entryBlock(m.Entry))
	return b.String()
}

// SMSLegacyDue renders the single-recipient reminder text.
func SMSLegacyDue(e models.Entry) string {
	return "📋 Daily Reminder!\n\n" + entryBlock(e)
}

// SMSNoneDue renders the per-recipient "all clear" text.
func SMSNoneDue(name string, ageDays int, hasAge bool) string {
	return fmt.Sprintf("📋 Hello %s!%s\n\n✅ Good news! No medications scheduled for today.\n\n🎉 Enjoy your day!",
		name, ageSuffix(ageDays, hasAge))
}

// SMSLegacyNoneDue returns override, or DefaultFallbackText when it is blank.
func SMSLegacyNoneDue(override string) string {
	if strings.TrimSpace(override) == "" {
		return DefaultFallbackText
	}
	return override
}
