package classifier

import "strings"

type equipmentTerm struct {
	canonical string
	aliases   []string
}

// equipmentTerms is ordered; the first term found wins.
var equipmentTerms = buildEquipmentTerms([]equipmentTerm{
	{canonical: "láser", aliases: []string{"láser", "laser"}},
	{canonical: "ipl", aliases: []string{"ipl"}},
	{canonical: "criolipólisis", aliases: []string{"criolipólisis", "criolipolisis"}},
	{canonical: "radiofrecuencia", aliases: []string{"radiofrecuencia"}},
	{canonical: "ultracavitación", aliases: []string{"ultracavitación"}},
	{canonical: "presoterapia", aliases: []string{"presoterapia"}},
	{canonical: "microdermoabrasión", aliases: []string{"microdermoabrasión"}},
	{canonical: "hydrafacial", aliases: []string{"hidrafacial", "hydrafacial"}},
	{canonical: "ultraformer", aliases: []string{"ultraformer"}},
	{canonical: "cm slim", aliases: []string{"cm slim", "cmslim"}},
	{canonical: "led", aliases: []string{"led"}},
	{canonical: "oxígeno", aliases: []string{"oxígeno", "oxigeno"}},
})

var genericEquipmentNouns = foldAll([]string{"equipo", "equipos", "aparato", "aparatos", "maquina", "máquina"})

func buildEquipmentTerms(terms []equipmentTerm) []equipmentTerm {
	for i := range terms {
		terms[i].aliases = foldAll(terms[i].aliases)
	}
	return terms
}

// ExtractEquipmentOfInterest returns the canonical name of the first known
// equipment mentioned in text, or "" when none is.
func ExtractEquipmentOfInterest(text string) string {
	folded := Fold(text)
	if folded == "" {
		return ""
	}
	for _, term := range equipmentTerms {
		for _, alias := range term.aliases {
			if strings.Contains(folded, alias) {
				return term.canonical
			}
		}
	}
	return ""
}

// MentionsEquipment reports whether text names a specific equipment or
// asks about equipment in general.
func MentionsEquipment(text string) bool {
	if ExtractEquipmentOfInterest(text) != "" {
		return true
	}
	return containsAny(Fold(text), genericEquipmentNouns)
}

var purchaseIndicators = foldAll([]string{
	"demo", "demostración", "prueba", "interesado", "interesa",
	"comprar", "adquirir", "cotización", "precio", "costo",
	"asesor", "contactar", "información", "detalles",
})

// HasPurchaseIntent reports whether a generated reply signals that the
// customer should be followed up as a lead.
func HasPurchaseIntent(reply string) bool {
	return containsAny(Fold(reply), purchaseIndicators)
}

// Signals lists the named classifier signals that fired for text. It is
// stored alongside interaction logs.
func Signals(text string) []string {
	var out []string
	if IsGreeting(text) {
		out = append(out, "greeting")
	}
	if IsCourtesyMessage(text) {
		out = append(out, "courtesy")
	}
	if eq := ExtractEquipmentOfInterest(text); eq != "" {
		out = append(out, "equipment:"+eq)
	}
	return out
}
