package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-control/internal/domain"
)

func TestCapabilities_InventoryCoreSiempreActivo(t *testing.T) {
	caps := domain.NewCapabilities(map[domain.Module]bool{domain.ModuleInventoryCore: false})
	assert.True(t, caps.Enabled(domain.ModuleInventoryCore))
	assert.False(t, caps.Enabled(domain.ModulePurchaseOrders))
}

func TestCapabilities_FlagsIncluyeModulosInactivos(t *testing.T) {
	flags := domain.NewCapabilities(map[domain.Module]bool{domain.ModuleQualityControl: true}).Flags()
	assert.Equal(t, map[string]bool{
		"inventory_core":    true,
		"purchase_orders":   false,
		"quality_control":   true,
		"location_tracking": false,
	}, flags)
}

func TestCapabilities_Todas(t *testing.T) {
	caps := domain.AllCapabilities()
	for _, m := range []domain.Module{domain.ModulePurchaseOrders, domain.ModuleQualityControl, domain.ModuleLocationTracking} {
		assert.True(t, caps.Enabled(m), m)
	}
}
