package compose

import (
	"bytes"
	"fmt"
	"html/template"
)

// EmailItem is one due reminder in the consolidated email.
type EmailItem struct {
	DueMessage
}

// Age returns the rendered age or "N/A".
func (i EmailItem) Age() string {
	if line := AgeLine(i.AgeDays, i.HasAge); line != "" {
		return line
	}
	return "N/A"
}

const footer = `
  <p style="color: #999; font-size: 12px; margin-top: 20px; text-align: center;">
    Sent automatically by Pig Farm Reminder System
  </p>
</div>`

var dueTmpl = template.Must(template.New("due").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #e91e63; border-bottom: 2px solid #e91e63; padding-bottom: 10px;">🐷 Farm Medication Reminders</h1>
  <p style="color: #666; font-size: 14px;">Date: {{.Date}}</p>
  <p style="background: #4CAF50; color: white; padding: 10px; border-radius: 5px;">
    📋 <strong>{{len .Items}} medication(s) scheduled for today</strong>
  </p>
  <ol style="padding-left: 0; list-style: none;">
  {{- range $i, $item := .Items}}
    <li style="background: #f9f9f9; border-left: 4px solid #e91e63; margin: 15px 0; padding: 15px; border-radius: 0 5px 5px 0;">
      <h3 style="margin: 0 0 10px 0; color: #333;">{{inc $i}}. {{$item.Name}}</h3>
      <table style="width: 100%; border-collapse: collapse;">
        <tr><td style="padding: 5px 0; color: #666;">📅 Age:</td><td style="padding: 5px 0;"><strong>{{$item.Age}}</strong></td></tr>
        <tr><td style="padding: 5px 0; color: #666;">💊 Medication:</td><td style="padding: 5px 0;"><strong>{{$item.Entry.Tablet}}</strong></td></tr>
        <tr><td style="padding: 5px 0; color: #666;">🕐 Time:</td><td style="padding: 5px 0;"><strong>{{$item.Entry.Time}}</strong></td></tr>
        <tr><td style="padding: 5px 0; color: #666;">📝 Notes:</td><td style="padding: 5px 0;"><strong>{{$item.Entry.Notes}}</strong></td></tr>
      </table>
    </li>
  {{- end}}
  </ol>
  <div style="margin-top: 20px; padding: 15px; background: #e3f2fd; border-radius: 5px;">
    <p style="margin: 0; color: #1976D2;">✅ Complete all medications and mark as done!</p>
  </div>` + footer))

var noneTmpl = template.Must(template.New("none").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #4CAF50; border-bottom: 2px solid #4CAF50; padding-bottom: 10px;">🐷 Farm Update - All Clear!</h1>
  <p style="color: #666; font-size: 14px;">Date: {{.Date}}</p>
  <div style="background: #e8f5e9; border-radius: 10px; padding: 30px; text-align: center; margin: 20px 0;">
    <h2 style="color: #4CAF50; margin: 0;">✅ No medications scheduled today!</h2>
  </div>
  <div style="background: #f5f5f5; padding: 15px; border-radius: 5px; margin: 15px 0;">
    <table style="width: 100%;">
      <tr><td style="padding: 5px 0;">📊 Total Pigs:</td><td style="padding: 5px 0; text-align: right;"><strong>{{.Count}}</strong></td></tr>
      <tr><td style="padding: 5px 0;">💊 Medications Today:</td><td style="padding: 5px 0; text-align: right;"><strong>0</strong></td></tr>
    </table>
  </div>
  <div style="background: #fff3e0; padding: 15px; border-radius: 5px; margin: 15px 0;">
    <p style="margin: 0; color: #e65100;">🎉 Enjoy your day! Check back tomorrow for updates.</p>
  </div>` + footer))

// EmailDue renders the consolidated HTML body listing every due reminder.
func EmailDue(date string, items []EmailItem) (string, error) {
	var buf bytes.Buffer
	if err := dueTmpl.Execute(&buf, struct {
		Date  string
		Items []EmailItem
	}{date, items}); err != nil {
		return "", fmt.Errorf("compose: due email: %w", err)
	}
	return buf.String(), nil
}

// EmailNoneDue renders the "all clear" HTML body citing the recipient count.
func EmailNoneDue(date string, count int) (string, error) {
	var buf bytes.Buffer
	if err := noneTmpl.Execute(&buf, struct {
		Date  string
		Count int
	}{date, count}); err != nil {
		return "", fmt.Errorf("compose: none-due email: %w", err)
	}
	return buf.String(), nil
}

// EmailDueSubject is the subject line for the medications email.
func EmailDueSubject(n int, date string) string {
	return fmt.Sprintf("💊 %d Medication(s) Today (%s)", n, date)
}

// EmailNoneDueSubject is the subject line for the "all clear" email.
func EmailNoneDueSubject(date string) string {
	return fmt.Sprintf("✅ Farm Update - No Medications Today (%s)", date)
}
