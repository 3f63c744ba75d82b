package flows

import "github.com/wolfman30/ares-whatsapp-router/internal/whatsapp"

// Interactive ids. Button ids name the main-menu categories; list row ids
// name sub-menu entries.
const (
	ButtonSales      = "sales"
	ButtonSupport    = "support"
	ButtonAccounting = "accounting"

	RowSalesSupplies      = "sales_supplies"
	RowSalesEquipment     = "sales_equipment"
	RowSupportFailure     = "support_failure"
	RowSupportMaintenance = "support_maintenance"
	RowSupportWarranty    = "support_warranty"
	RowMainMenu           = "main_menu"
)

var mainMenuButtons = []whatsapp.Button{
	{ID: ButtonSales, Title: "Ventas"},
	{ID: ButtonSupport, Title: "Soporte"},
	{ID: ButtonAccounting, Title: "Administración"},
}

var backToMainSection = whatsapp.ListSection{
	Title: "Navegación",
	Rows: []whatsapp.ListRow{
		{ID: RowMainMenu, Title: "Menú principal", Description: "Volver al inicio"},
	},
}

func salesListMenu() whatsapp.ListMessage {
	return whatsapp.ListMessage{
		Header:      "Selecciona una categoría",
		Body:        "Elige qué tipo de productos te interesan:",
		ButtonLabel: "Ver opciones",
		Sections: []whatsapp.ListSection{
			{
				Title: "Categorías de Productos",
				Rows: []whatsapp.ListRow{
					{ID: RowSalesSupplies, Title: "Insumos", Description: "Tips, consumibles, repuestos"},
					{ID: RowSalesEquipment, Title: "Equipos", Description: "HydraFacial, Ultraformer, CM Slim..."},
				},
			},
			backToMainSection,
		},
	}
}

func supportListMenu(link string) whatsapp.ListMessage {
	return whatsapp.ListMessage{
		Header:      "Soporte técnico",
		Body:        supportMenuBody(link),
		ButtonLabel: "Ver opciones",
		Sections: []whatsapp.ListSection{
			{
				Title: "Tipo de asistencia",
				Rows: []whatsapp.ListRow{
					{ID: RowSupportFailure, Title: "Falla técnica", Description: "Mi equipo no funciona correctamente"},
					{ID: RowSupportMaintenance, Title: "Mantenimiento", Description: "Service preventivo o calibración"},
					{ID: RowSupportWarranty, Title: "Garantía", Description: "Consultas sobre cobertura"},
				},
			},
			backToMainSection,
		},
	}
}

var supportTopics = map[string]string{
	RowSupportFailure:     "fallas técnicas",
	RowSupportMaintenance: "mantenimiento",
	RowSupportWarranty:    "garantías",
}
