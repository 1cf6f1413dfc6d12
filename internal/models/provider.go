package models

// Provider is a doctor (appointment) or a diagnostic test (lab_test) that owns availability.
type Provider struct {
	ID          int64   `yaml:"id" json:"id"`
	Kind        Kind    `yaml:"kind" json:"kind"`
	Name        string  `yaml:"name" json:"name"`
	DefaultFee  float64 `yaml:"default_fee" json:"default_fee"`
	ResourceIDs []int64 `yaml:"resources" json:"resource_ids,omitempty"`
	// IsActive провайдеры из конфига активны, пропавшие из него деактивируются при синхронизации
	IsActive bool `yaml:"-" json:"is_active"`
}

// HasResource reports whether the provider is associated with the resource.
func (p *Provider) HasResource(resourceID int64) bool {
	for _, id := range p.ResourceIDs {
		if id == resourceID {
			return true
		}
	}
	return false
}

// Resource is a physical location (clinic, diagnostic center) bookings happen at.
type Resource struct {
	ID   int64  `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}
