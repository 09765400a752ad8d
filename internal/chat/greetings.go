package chat

import "fmt"

// Synthesized transcript messages. These are the only messages created
// without a prior user turn.

const genericGreeting = "Hallo! Ich bin Ihr Versorgungs-Coach. Wie kann ich Ihnen heute helfen? Sie können mir Fragen zu Ihrer Gesundheit, Ihren Dokumenten oder Ihrer Versorgung stellen."

func documentGreeting(title, date string) string {
	return fmt.Sprintf("Guten Tag! Sie schauen sich gerade den %s vom %s an. Ich bin Ihr Versorgungs-Coach und kann Ihnen in einfachen Worten erklären, worum es in diesem Dokument geht und welche nächsten Schritte für Sie sinnvoll sein könnten. Wie kann ich Ihnen helfen?", title, date)
}

const advisorGreeting = "Guten Tag, hier ist Ihr Kundenberater. Ich habe die Informationen zu Ihrem Anliegen erhalten und stehe Ihnen jetzt persönlich zur Verfügung. Wie kann ich Ihnen weiterhelfen?"

const (
	typingLabelCoach   = "Coach schreibt..."
	typingLabelAdvisor = "Berater schreibt..."
)
