// Package classify maps raw telemetry records to typed alerts and audit entries.
// Classification is pure: no I/O, no shared state, deterministic per record.
package classify

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Divyam-11/ExamJudge/internal/domain"
)

// BannedTerms is the fixed banned-term set scanned case-insensitively in
// keystroke buffers and window titles. Order fixes the order of alerts
// produced from a single record.
var BannedTerms = []string{"chatgpt", "gemini", "gfg", "leetcode", "stackoverflow", "chegg"}

// HighCharPasteThreshold is the paste size (in characters) above which a paste
// is classified as HighCharacterPaste. The boundary is strict: exactly this
// many characters is still a plain PasteDetected.
const HighCharPasteThreshold = 100

// storedPasteLimit caps the pasted text persisted in a LogEntry's details.
// The broadcast alert always carries the full text; only storage is truncated.
const storedPasteLimit = 500

// Result is one classified outcome: the alert to broadcast and the audit
// entry to persist. Entry.ID is zero until the store appends it.
type Result struct {
	Alert domain.Alert
	Entry domain.LogEntry
}

// Classify maps one telemetry record to zero or more results. A keystroke
// buffer containing several distinct banned terms yields one result per term;
// a term repeated within the buffer yields exactly one. Unrecognized kinds
// classify to nothing.
func Classify(rec domain.TelemetryRecord) []Result {
	switch rec.Kind {
	case domain.KindKeystroke:
		return classifyKeystrokes(rec)
	case domain.KindPaste:
		return classifyPaste(rec)
	case domain.KindWindowTitle:
		return classifyWindowTitle(rec)
	case domain.KindDragDrop:
		return classifyDragDrop(rec)
	default:
		return nil
	}
}

func classifyKeystrokes(rec domain.TelemetryRecord) []Result {
	buffer := strings.ToLower(rec.Keystrokes)
	var out []Result
	for _, term := range BannedTerms {
		if !strings.Contains(buffer, term) {
			continue
		}
		msg := fmt.Sprintf("Suspicious keyword %q typed.", term)
		out = append(out, newResult(rec, domain.CategoryKeywordDetected, domain.SeverityWarning,
			msg, "Keyword: "+term, "Keyword: "+term))
	}
	return out
}

func classifyPaste(rec domain.TelemetryRecord) []Result {
	n := utf8.RuneCountInString(rec.PastedContent)
	category := domain.CategoryPasteDetected
	severity := domain.SeverityWarning
	msg := fmt.Sprintf("Pasted %d characters.", n)
	if n > HighCharPasteThreshold {
		category = domain.CategoryHighCharacterPaste
		severity = domain.SeverityCritical
		msg = fmt.Sprintf("A large amount of text (%d chars) was pasted.", n)
	}
	stored := rec.PastedContent
	if utf8.RuneCountInString(stored) > storedPasteLimit {
		stored = string([]rune(stored)[:storedPasteLimit])
	}
	return []Result{newResult(rec, category, severity, msg, rec.PastedContent, stored)}
}

func classifyWindowTitle(rec domain.TelemetryRecord) []Result {
	title := strings.ToLower(rec.WindowTitle)
	for _, term := range BannedTerms {
		if strings.Contains(title, term) {
			msg := fmt.Sprintf("Active window title contains banned keyword: %s", rec.WindowTitle)
			return []Result{newResult(rec, domain.CategorySuspiciousWindow, domain.SeverityWarning,
				msg, "Window Title: "+rec.WindowTitle, "Window Title: "+rec.WindowTitle)}
		}
	}
	return nil
}

func classifyDragDrop(rec domain.TelemetryRecord) []Result {
	msg := fmt.Sprintf("Content dragged from %q to %q.", rec.DragSource, rec.DragDestination)
	details := fmt.Sprintf("Source: %s, Destination: %s", rec.DragSource, rec.DragDestination)
	return []Result{newResult(rec, domain.CategoryDragDropDetected, domain.SeverityWarning,
		msg, details, details)}
}

func newResult(rec domain.TelemetryRecord, category domain.Category, severity domain.Severity,
	msg, alertDetails, entryDetails string) Result {
	return Result{
		Alert: domain.Alert{
			RoomID:    rec.RoomID,
			Subject:   rec.Subject,
			Category:  category,
			Message:   msg,
			Severity:  severity,
			Timestamp: rec.ReceivedAt,
			Details:   alertDetails,
		},
		Entry: domain.LogEntry{
			Timestamp: rec.ReceivedAt,
			RoomID:    rec.RoomID,
			SubjectID: rec.Subject.SubjectID(),
			EventType: category,
			Message:   msg,
			Details:   entryDetails,
		},
	}
}
