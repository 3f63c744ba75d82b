// Package classifier holds the deterministic text classifiers used to route
// inbound WhatsApp messages. Every function is pure and tolerates empty input.
package classifier

// Intent is the primary business line a free-text message is about.
type Intent string

const (
	IntentSales      Intent = "sales"
	IntentSupport    Intent = "support"
	IntentAccounting Intent = "accounting"
)

func (i Intent) String() string { return string(i) }

var (
	salesKeywords = foldAll([]string{
		"precio", "precios", "comprar", "compra", "cotización", "cotizar",
		"equipo", "equipos", "producto", "productos", "catalogo", "catálogo",
		"demo", "demostración", "prueba", "información", "info",
		"características", "beneficios", "ventas", "venta",
	})
	accountingKeywords = foldAll([]string{
		"factura", "facturas", "pago", "pagos", "cobro", "cobros",
		"recibo", "recibos", "deuda", "deudas", "saldo", "saldos",
		"contabilidad", "contable", "financiero", "financiera",
	})
	supportKeywords = foldAll([]string{
		"problema", "problemas", "ayuda", "soporte", "técnico", "error",
		"falla", "fallo", "no funciona", "no anda", "reparación",
		"mantenimiento", "garantía", "servicio",
	})
)

// Scores holds the keyword hit count per intent.
type Scores struct {
	Sales      int
	Accounting int
	Support    int
}

// Score counts keyword substring hits for each intent.
func Score(text string) Scores {
	folded := Fold(text)
	return Scores{
		Sales:      countHits(folded, salesKeywords),
		Accounting: countHits(folded, accountingKeywords),
		Support:    countHits(folded, supportKeywords),
	}
}

// Intent applies the tie-break order: no hits goes to support, otherwise
// sales wins ties over accounting, which wins ties over support.
func (s Scores) Intent() Intent {
	if s.Sales == 0 && s.Accounting == 0 && s.Support == 0 {
		return IntentSupport
	}
	if s.Sales >= s.Accounting && s.Sales >= s.Support {
		return IntentSales
	}
	if s.Accounting >= s.Sales && s.Accounting >= s.Support {
		return IntentAccounting
	}
	return IntentSupport
}

// ClassifyIntent returns the primary intent of a free-text message.
func ClassifyIntent(text string) Intent {
	return Score(text).Intent()
}
