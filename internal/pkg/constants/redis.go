package constants

// Redis key formats
const (
	KeyDriverGeo        = "driver:geo"         // GeoHash set of all driver locations
	KeyAvailableDrivers = "drivers:available"  // Set of available driver IDs
	KeyDriverLocation   = "driver:location:%s" // Format: driver:location:{driver_id}
)

// Redis hash fields
const (
	FieldLatitude  = "lat"
	FieldLongitude = "lng"
	FieldTimestamp = "ts"
)
