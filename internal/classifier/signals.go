package classifier

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/wolfman30/ares-whatsapp-router/internal/inbound"
)

var greetingPhrases = foldAll([]string{
	"hola", "holis", "buenas", "buenos días", "buen día", "buenas tardes",
	"buenas noches", "saludos", "qué tal", "hello", "menú", "menu",
})

var courtesyPhrases = foldAll([]string{
	"ok", "okey", "okay", "oki", "dale", "listo", "perfecto", "genial",
	"excelente", "bueno", "buenisimo", "gracias", "muchas gracias",
	"mil gracias", "ok gracias", "gracias!", "chau", "chao", "adiós",
	"hasta luego", "nos vemos", "de nada", "entendido", "joya", "jaja",
	"jajaja", "jeje", "jiji", "👍", "🙏", "😊",
})

var laughterPattern = regexp.MustCompile(`^(?:ja|je|ji)+[!.]*$`)

const (
	courtesyNoiseMax = 3
	courtesyShortMax = 20
)

// IsGreeting reports whether the message contains a greeting phrase.
func IsGreeting(text string) bool {
	folded := Fold(strings.TrimSpace(text))
	if folded == "" {
		return false
	}
	return containsAny(folded, greetingPhrases)
}

// IsCourtesyMessage reports whether the message is a short closing,
// thanks or laughter that needs only a friendly acknowledgement.
func IsCourtesyMessage(text string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	length := utf8.RuneCountInString(trimmed)
	if length <= courtesyNoiseMax {
		return true
	}
	folded := Fold(trimmed)
	if length <= courtesyShortMax && containsPhrase(folded, courtesyPhrases) {
		return true
	}
	return laughterPattern.MatchString(folded)
}

// containsPhrase matches phrases on word boundaries so "ok" does not fire
// inside "stock". Phrases that start with a symbol (emoji) match anywhere.
func containsPhrase(folded string, phrases []string) bool {
	padded := " " + strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	}), " ") + " "
	for _, phrase := range phrases {
		first, _ := utf8.DecodeRuneInString(phrase)
		if !unicode.IsLetter(first) {
			if strings.Contains(folded, phrase) {
				return true
			}
			continue
		}
		if strings.Contains(padded, " "+strings.Trim(phrase, "!?.,")+" ") {
			return true
		}
	}
	return false
}

// ButtonReplyID returns the selected button id, or "" when the event is not
// a button reply.
func ButtonReplyID(ev *inbound.Event) string {
	if ev == nil || ev.Type != inbound.TypeButtonReply {
		return ""
	}
	return ev.ButtonReplyID
}

// ListReplyID returns the selected list row id, or "" when the event is not
// a list reply.
func ListReplyID(ev *inbound.Event) string {
	if ev == nil || ev.Type != inbound.TypeListReply {
		return ""
	}
	return ev.ListReplyID
}

// Greeting strings by time of day.
const (
	GreetingMorning   = "Buenos días"
	GreetingAfternoon = "Buenas tardes"
	GreetingEvening   = "Buenas noches"
	GreetingGeneric   = "Hola"
)

// TimeBasedGreeting picks a greeting from the hour of now in timezone.
// Hours [5,12) are morning, [12,19) afternoon, the rest evening.
func TimeBasedGreeting(now time.Time, timezone string) string {
	loc, err := time.LoadLocation(timezone)
	if err != nil || strings.TrimSpace(timezone) == "" {
		return GreetingGeneric
	}
	hour := now.In(loc).Hour()
	switch {
	case hour >= 5 && hour < 12:
		return GreetingMorning
	case hour >= 12 && hour < 19:
		return GreetingAfternoon
	default:
		return GreetingEvening
	}
}
