package services

import "fleet-assignment-service/internal/domain"

// VehiclePool partitions the fleet roster by service type into removable
// FIFO lists. Taking a vehicle removes it, so a vehicle can never be
// assigned twice within a batch.
//
// The pool is mutated in place and is not safe for concurrent assignment
// runs; batches must be serialized by the caller.
type VehiclePool struct {
	byType map[string][]domain.Vehicle
}

// NewVehiclePool partitions fleet by service type, preserving ingest order
// within each partition.
func NewVehiclePool(fleet []domain.Vehicle) *VehiclePool {
	byType := make(map[string][]domain.Vehicle)
	for _, v := range fleet {
		byType[v.ServiceType] = append(byType[v.ServiceType], v)
	}
	return &VehiclePool{byType: byType}
}

// Take removes and returns the first vehicle of the given service type.
func (p *VehiclePool) Take(serviceType string) (domain.Vehicle, bool) {
	vehicles := p.byType[serviceType]
	if len(vehicles) == 0 {
		return domain.Vehicle{}, false
	}
	v := vehicles[0]
	p.byType[serviceType] = vehicles[1:]
	return v, true
}

// Peek returns the vehicle Take would yield without removing it. The engine
// uses this to evaluate the electric constraint before committing, so a
// rejected candidate type leaves the pool untouched.
func (p *VehiclePool) Peek(serviceType string) (domain.Vehicle, bool) {
	vehicles := p.byType[serviceType]
	if len(vehicles) == 0 {
		return domain.Vehicle{}, false
	}
	return vehicles[0], true
}

// PeekByName reports whether a specific named vehicle of the given service
// type is still present, without removing it.
func (p *VehiclePool) PeekByName(serviceType, vehicleName string) (domain.Vehicle, bool) {
	for _, v := range p.byType[serviceType] {
		if v.VehicleName == vehicleName {
			return v, true
		}
	}
	return domain.Vehicle{}, false
}

// TakeByName removes a specific named vehicle of the given service type if it
// is still present. Used for affinity-preferred selection.
func (p *VehiclePool) TakeByName(serviceType, vehicleName string) (domain.Vehicle, bool) {
	vehicles := p.byType[serviceType]
	for i, v := range vehicles {
		if v.VehicleName == vehicleName {
			p.byType[serviceType] = append(vehicles[:i:i], vehicles[i+1:]...)
			return v, true
		}
	}
	return domain.Vehicle{}, false
}

// TakeByVIN removes a specific vehicle regardless of service type. Used by
// the manual override path, where the operator picks any remaining vehicle.
func (p *VehiclePool) TakeByVIN(vin string) (domain.Vehicle, bool) {
	for serviceType, vehicles := range p.byType {
		for i, v := range vehicles {
			if v.VIN == vin {
				p.byType[serviceType] = append(vehicles[:i:i], vehicles[i+1:]...)
				return v, true
			}
		}
	}
	return domain.Vehicle{}, false
}

// PutBack reinserts a vehicle at the end of its service-type partition.
// Used by manual-override rollback.
func (p *VehiclePool) PutBack(v domain.Vehicle) {
	p.byType[v.ServiceType] = append(p.byType[v.ServiceType], v)
}

// Available returns how many vehicles of the given service type remain.
func (p *VehiclePool) Available(serviceType string) int {
	return len(p.byType[serviceType])
}

// Remaining returns all vehicles still in the pool, grouped by service type.
// The slices are copies; mutating them does not affect the pool.
func (p *VehiclePool) Remaining() map[string][]domain.Vehicle {
	out := make(map[string][]domain.Vehicle, len(p.byType))
	for serviceType, vehicles := range p.byType {
		if len(vehicles) == 0 {
			continue
		}
		cp := make([]domain.Vehicle, len(vehicles))
		copy(cp, vehicles)
		out[serviceType] = cp
	}
	return out
}
