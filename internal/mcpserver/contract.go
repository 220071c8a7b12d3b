package mcpserver

// ReminderFormatContract describes the reminder file layout the dispatcher
// reads, for LLM consumers preparing or checking data files.
const ReminderFormatContract = `# dosebell Reminder File Format

One JSON file per recipient in the data directory. Only top-level files
ending in .json are read; a file that fails to parse is skipped.

## Structure

` + "```" + `json
{
  "name": "Pig 1",                 // REQUIRED; used in greetings
  "phone": "+15551234567",         // OPTIONAL; E.164, needed for SMS
  "dob": "2025-03-01",             // OPTIONAL; enables the age line
  "reminders": [                   // REQUIRED; may be empty
    {
      "date": "2026-10-14",        // REQUIRED; YYYY-MM-DD, zero-padded
      "tablet": "Ivermectin",
      "time": "08:00 AM",
      "notes": "Mix with feed"     // OPTIONAL; rendered empty when absent
    }
  ]
}
` + "```" + `

## Rules

1. **Dates are calendar dates.** ` + "`date`" + ` is compared as a string against today's
   ` + "`YYYY-MM-DD`" + ` key in the configured timezone.
2. **First match wins.** With several entries on the same date only the first
   is sent.
3. **Nothing is marked sent.** Triggering twice on one day sends twice.
4. **Legacy mode.** When the data path is a single file it holds only
   ` + "`{\"reminders\": [...]}`" + ` and the recipient comes from configuration.
`
