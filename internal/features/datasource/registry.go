package datasource

// JoinKeys is the column pair joining a primary source to a secondary one
type JoinKeys struct {
	LeftKey  string `json:"left_key"`
	RightKey string `json:"right_key"`
}

// Source describes one logical data source exposed to the reporting engine
type Source struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	Table       string   `json:"table"`
	Fields      []string `json:"fields"`
}

// Registry is the static catalog of warehouse data sources and the
// permissible two-level joins between them. Secondary sources without a
// join entry are skipped at query time, not rejected.
type Registry struct {
	sources map[string]Source
	order   []string
	joins   map[string]map[string]JoinKeys
}

func NewRegistry() *Registry {
	sources := []Source{
		{
			Name:        "warehouse_zones",
			DisplayName: "Warehouse Zones",
			Description: "Storage zones with capacity and climate readings",
			Table:       "warehouse_zones",
			Fields: []string{
				"id", "name", "code", "type", "capacity", "used_capacity",
				"utilization_rate", "temperature", "humidity", "status", "created_at",
			},
		},
		{
			Name:        "equipment",
			DisplayName: "Equipment",
			Description: "Forklifts, conveyors, scanners and other handling equipment",
			Table:       "equipment",
			Fields: []string{
				"id", "zone_id", "name", "code", "type", "status",
				"battery_level", "utilization_rate", "last_maintenance_at", "created_at",
			},
		},
		{
			Name:        "inbound_shipments",
			DisplayName: "Inbound Shipments",
			Description: "Receiving orders and their progress",
			Table:       "inbound_shipments",
			Fields: []string{
				"id", "zone_id", "reference", "supplier", "status",
				"expected_at", "received_at", "line_count", "total_quantity", "created_at",
			},
		},
		{
			Name:        "inventory_items",
			DisplayName: "Inventory Items",
			Description: "Stock on hand per SKU and zone",
			Table:       "inventory_items",
			Fields: []string{
				"id", "zone_id", "sku", "description", "quantity",
				"unit_cost", "total_value", "status", "expires_at", "created_at",
			},
		},
		{
			Name:        "iot_sensors",
			DisplayName: "IoT Sensors",
			Description: "Telemetry devices attached to zones and equipment",
			Table:       "iot_sensors",
			Fields: []string{
				"id", "zone_id", "equipment_id", "code", "type", "status",
				"last_reading", "last_reading_at", "created_at",
			},
		},
		{
			Name:        "optimization_runs",
			DisplayName: "Optimization Runs",
			Description: "Slotting and routing optimization results",
			Table:       "optimization_runs",
			Fields: []string{
				"id", "zone_id", "algorithm", "status", "score",
				"improvement_rate", "started_at", "finished_at", "created_at",
			},
		},
	}

	r := &Registry{
		sources: make(map[string]Source, len(sources)),
		joins: map[string]map[string]JoinKeys{
			"warehouse_zones": {
				"equipment":         {LeftKey: "id", RightKey: "zone_id"},
				"inbound_shipments": {LeftKey: "id", RightKey: "zone_id"},
				"inventory_items":   {LeftKey: "id", RightKey: "zone_id"},
				"iot_sensors":       {LeftKey: "id", RightKey: "zone_id"},
			},
			"equipment": {
				"iot_sensors":     {LeftKey: "id", RightKey: "equipment_id"},
				"warehouse_zones": {LeftKey: "zone_id", RightKey: "id"},
			},
			"inbound_shipments": {
				"warehouse_zones": {LeftKey: "zone_id", RightKey: "id"},
			},
			"inventory_items": {
				"warehouse_zones": {LeftKey: "zone_id", RightKey: "id"},
			},
			// optimization_runs has no secondaries on purpose: it is
			// informational-only and joins to it are skipped.
		},
	}
	for _, s := range sources {
		r.sources[s.Name] = s
		r.order = append(r.order, s.Name)
	}
	return r
}

// Has reports whether a logical source name is registered
func (r *Registry) Has(name string) bool {
	_, ok := r.sources[name]
	return ok
}

// Get returns the source definition for a logical name
func (r *Registry) Get(name string) (Source, bool) {
	s, ok := r.sources[name]
	return s, ok
}

// List returns all sources in registration order
func (r *Registry) List() []Source {
	out := make([]Source, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.sources[name])
	}
	return out
}

// Names returns all logical source names in registration order
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// JoinFor returns the join key pair from primary to secondary, if one exists
func (r *Registry) JoinFor(primary, secondary string) (JoinKeys, bool) {
	m, ok := r.joins[primary]
	if !ok {
		return JoinKeys{}, false
	}
	keys, ok := m[secondary]
	return keys, ok
}

// FieldSource resolves which of the given sources declares a field,
// preferring earlier entries. Used to qualify columns in query plans.
func (r *Registry) FieldSource(sources []string, field string) (string, bool) {
	for _, name := range sources {
		src, ok := r.sources[name]
		if !ok {
			continue
		}
		for _, f := range src.Fields {
			if f == field {
				return name, true
			}
		}
	}
	return "", false
}
