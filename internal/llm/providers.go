package llm

// IDs de proveedores conocidos por el motor.
const (
	ProviderClaude = "claude"
	ProviderGPT    = "gpt"
)

// Familias de estilo por proveedor: usadas por el ledger para sesgar preferencias
// y para el fallback cuando no hay metricas.
var (
	AnalyticalProviders = map[string]bool{ProviderClaude: true}
	CreativeProviders   = map[string]bool{ProviderGPT: true}
)

// ProviderForStyle devuelve el proveedor por defecto para un estilo de IA preferido.
func ProviderForStyle(style string) string {
	switch style {
	case "creative":
		return ProviderGPT
	case "analytical", "balanced":
		return ProviderClaude
	default:
		return ProviderClaude
	}
}
