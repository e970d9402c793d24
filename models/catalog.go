package models

// OtherService is the select value that switches the service input to free text
const OtherService = "OUTRO"

// ServiceCatalog lists the fixed service types offered by the lab
var ServiceCatalog = []string{
	"Protese Total",
	"Protese Flexivel",
	"Ponte Movel",
	"Conserto",
	"Placa de Bruxismo",
	"Protocolo",
	"Coroa Porcelana",
}

// InCatalog reports whether service is one of the catalog values (exact match)
func InCatalog(service string) bool {
	for _, s := range ServiceCatalog {
		if s == service {
			return true
		}
	}
	return false
}
