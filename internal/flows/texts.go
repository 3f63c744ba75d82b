package flows

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MenuSent is the FlowResponse message recorded when the main menu is sent.
const MenuSent = "Menú principal enviado"

const (
	textMenuQuestion = "¿En qué podemos ayudarte hoy?"
	textSupplies     = "Perfecto, ¿qué insumo te interesa? (tips, consumibles, repuestos, etc.)"
	textCourtesy     = "¡Con gusto! Si necesitas algo más, escríbenos cuando quieras. 😊"

	textCatalogLoading = "Hola! Actualmente estoy cargando la información más reciente de nuestro catálogo. Un asesor se pondrá en contacto contigo muy pronto."
	textAIFallback     = "Hola! Me encantaría ayudarte con información sobre nuestros equipos. Un asesor especializado se pondrá en contacto contigo muy pronto."
	textNoGeneration   = "Lo siento, no pude generar una respuesta en este momento."

	supportSnippetRunes = 100
)

func greetingText(salutation, name string, customName bool) string {
	if customName {
		return fmt.Sprintf("%s %s! 👋\n\n%s", salutation, name, textMenuQuestion)
	}
	return fmt.Sprintf("%s! 👋\n\n%s", salutation, textMenuQuestion)
}

func salesClarifyText(name string) string {
	return fmt.Sprintf("Hola %s, gracias por tu interés en nuestros productos. ¿Te gustaría ver información sobre equipos o insumos?", name)
}

func accountingText(name, customerText, link string) string {
	topic := "contabilidad"
	if strings.Contains(strings.ToLower(customerText), "factura") {
		topic = "facturación"
	}
	msg := fmt.Sprintf("Hola %s, gracias por tu mensaje sobre %s. Un miembro de nuestro equipo de contabilidad te responderá en breve.", name, topic)
	return withHandoff(msg, "Si prefieres, escribe directamente a administración", link)
}

func supportText(name, customerText, link string) string {
	msg := fmt.Sprintf("Hola %s, gracias por contactarnos. Actualmente estamos trabajando para brindarte el mejor soporte automatizado. Un agente especializado te contactará pronto para ayudarte con: %s...",
		name, truncateRunes(customerText, supportSnippetRunes))
	return withHandoff(msg, "También puedes hablar directamente con un técnico", link)
}

func supportTopicText(name, topic, link string) string {
	msg := fmt.Sprintf("Hola %s, gracias por contactarnos. Un agente especializado en %s te contactará pronto.", name, topic)
	return withHandoff(msg, "Para una atención inmediata, escribe a nuestro técnico", link)
}

func supportMenuBody(link string) string {
	return withHandoff("Selecciona el tipo de asistencia que necesitas.", "Si prefieres hablar con un técnico", link)
}

func withHandoff(msg, lead, link string) string {
	if strings.TrimSpace(link) == "" {
		return msg
	}
	return fmt.Sprintf("%s\n\n%s: %s", msg, lead, link)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
