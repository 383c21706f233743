package models

// TermTypeOther marks the free-text escape hatch in the term-type catalog;
// terms carrying it require a caller-supplied label.
const TermTypeOther = "other"

// TermType is a catalog entry for a procedural term category. DefaultDays is
// the statutory business-day count clients may prefill; nil means the count
// is always entered manually.
type TermType struct {
	Code        string `json:"code"`
	Label       string `json:"label"`
	DefaultDays *int   `json:"default_days,omitempty"`
}

// TermTypes is the built-in catalog, modeled on common Colombian procedural
// terms. The catalog is read-only; unknown codes are rejected at creation.
var TermTypes = []TermType{
	{Code: "contestacion_demanda", Label: "Contestación de Demanda", DefaultDays: intPtr(20)},
	{Code: "recurso_reposicion", Label: "Recurso de Reposición", DefaultDays: intPtr(3)},
	{Code: "recurso_apelacion", Label: "Recurso de Apelación", DefaultDays: intPtr(3)},
	{Code: "recurso_suplica", Label: "Recurso de Súplica", DefaultDays: intPtr(3)},
	{Code: "subsanacion_demanda", Label: "Subsanación de Demanda", DefaultDays: intPtr(5)},
	{Code: "alegatos_conclusion", Label: "Alegatos de Conclusión", DefaultDays: intPtr(10)},
	{Code: "ejecutoria", Label: "Ejecutoria de Providencia", DefaultDays: intPtr(3)},
	{Code: "impugnacion_tutela", Label: "Impugnación de Tutela", DefaultDays: intPtr(3)},
	{Code: TermTypeOther, Label: "Otro"},
}

// FindTermType resolves a catalog entry by code.
func FindTermType(code string) (TermType, bool) {
	for _, t := range TermTypes {
		if t.Code == code {
			return t, true
		}
	}
	return TermType{}, false
}

func intPtr(v int) *int {
	return &v
}
