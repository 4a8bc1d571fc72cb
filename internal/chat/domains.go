package chat

// DefaultDomainID is used when a request carries no domain or an unknown one.
const DefaultDomainID = "site"

// domainContexts maps a domain ID to the specialization phrase injected into
// the system prompt.
var domainContexts = map[string]string{
	// Featured
	"general": "General civil engineering queries and IS code guidance",
	"best":    "General civil engineering across all domains — auto-selects the best expert",
	// Primary
	"rcc":       "RCC (Reinforced Cement Concrete) design, IS 456:2000 codes, structural analysis, beam/column/slab design",
	"steel":     "Structural steel design, IS 800:2007 codes, connections, fabrication, and erection",
	"site":      "Site engineering, site execution, curing, concreting, quality control on site",
	"surveying": "Land surveying, setting out, leveling, theodolite, total station, GPS, contour mapping",
	// Specialty
	"geotechnical": "Geotechnical engineering, soil mechanics, foundation design, bearing capacity, pile foundations",
	"masonry":      "Brick and block masonry, mortar mixes, pointing, plastering, IS 1905 codes",
	"mep":          "Mechanical, Electrical, and Plumbing systems in buildings — HVAC, drainage, sanitary, wiring",
	"roads":        "Road and highway design, pavement design, IRC codes, bitumen, asphalt, camber, drainage",
	"water":        "Water supply, sewage, sewerage systems, STP, WTP, overhead tanks, pipeline design",
	"qs":           "Quantity surveying, BOQ preparation, estimation, costing, measurement, tender documents",
	"nbc":          "National Building Code compliance, fire safety, PPE, hazard management, building regulations",
	// Legacy
	"safety": "Construction safety, NBC 2016, fire safety, and compliance",
}

// DomainContext resolves a domain ID to its prompt specialization phrase,
// falling back to the default domain for unknown IDs.
func DomainContext(id string) string {
	if ctx, ok := domainContexts[id]; ok {
		return ctx
	}
	return domainContexts[DefaultDomainID]
}

// DomainKnown reports whether the domain ID is one the service recognizes.
func DomainKnown(id string) bool {
	_, ok := domainContexts[id]
	return ok
}
