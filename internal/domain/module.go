package domain

// Module identifica un módulo opcional de la aplicación.
type Module string

// Módulos conocidos. inventory_core siempre está activo.
const (
	ModuleInventoryCore    Module = "inventory_core"
	ModulePurchaseOrders   Module = "purchase_orders"
	ModuleQualityControl   Module = "quality_control"
	ModuleLocationTracking Module = "location_tracking"
)

// moduleDependencies: un módulo opcional se desactiva si alguna dependencia está inactiva.
var moduleDependencies = map[Module][]Module{
	ModulePurchaseOrders:   {ModuleInventoryCore},
	ModuleQualityControl:   {ModuleInventoryCore},
	ModuleLocationTracking: {ModuleInventoryCore},
}

// Capabilities es el conjunto de módulos activos. Se construye una vez al arrancar
// y se inyecta en los casos de uso; nunca se modifica en caliente.
type Capabilities struct {
	enabled map[Module]bool
}

// NewCapabilities construye el conjunto a partir de los flags configurados.
// Los módulos no mencionados quedan inactivos salvo inventory_core.
func NewCapabilities(flags map[Module]bool) Capabilities {
	enabled := map[Module]bool{ModuleInventoryCore: true}
	for m, on := range flags {
		if m == ModuleInventoryCore {
			continue
		}
		enabled[m] = on
	}
	for m, deps := range moduleDependencies {
		for _, d := range deps {
			if !enabled[d] {
				enabled[m] = false
			}
		}
	}
	return Capabilities{enabled: enabled}
}

// AllCapabilities activa todos los módulos conocidos.
func AllCapabilities() Capabilities {
	return NewCapabilities(map[Module]bool{
		ModulePurchaseOrders:   true,
		ModuleQualityControl:   true,
		ModuleLocationTracking: true,
	})
}

// Enabled informa si el módulo está activo.
func (c Capabilities) Enabled(m Module) bool {
	if m == ModuleInventoryCore {
		return true
	}
	return c.enabled[m]
}

// Flags devuelve el estado de todos los módulos conocidos, útil para logs y /health.
func (c Capabilities) Flags() map[string]bool {
	out := make(map[string]bool, len(moduleDependencies)+1)
	out[string(ModuleInventoryCore)] = true
	for m := range moduleDependencies {
		out[string(m)] = c.Enabled(m)
	}
	return out
}
