package config

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port" validate:"gt=0"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// SIRIConfig contains the municipal SIRI SOAP endpoint configuration
type SIRIConfig struct {
	Endpoint   string `yaml:"endpoint" validate:"required,url"`
	AccountID  string `yaml:"accountId" validate:"required"`
	AccountKey string `yaml:"accountKey" validate:"required"`
	Timezone   string `yaml:"timezone"`
	TimeoutMS  int    `yaml:"timeoutMS" validate:"gte=0"`
}

// PlannerConfig contains the journey planner tuning constants.
// Zero values are replaced with defaults by ApplyDefaults.
type PlannerConfig struct {
	WalkingSpeedMPS       float64 `yaml:"walkingSpeedMPS" validate:"gte=0"`
	BusSpeedMPS           float64 `yaml:"busSpeedMPS" validate:"gte=0"`
	TransferRadiusMeters  float64 `yaml:"transferRadiusMeters" validate:"gte=0"`
	MaxWalkDistanceMeters float64 `yaml:"maxWalkDistanceMeters" validate:"gte=0"`
	DirectWalkCapMeters   float64 `yaml:"directWalkCapMeters" validate:"gte=0"`
	MinHopSeconds         float64 `yaml:"minHopSeconds" validate:"gte=0"`
	InitialWaitSeconds    float64 `yaml:"initialWaitSeconds" validate:"gte=0"`
	TransferWaitSeconds   float64 `yaml:"transferWaitSeconds" validate:"gte=0"`
	// Assumed headway when the only known arrival for a line has already
	// passed. A tuning guess carried over from production, not a protocol
	// guarantee.
	MissedHeadwaySeconds    float64 `yaml:"missedHeadwaySeconds" validate:"gte=0"`
	MaxRoutes               int     `yaml:"maxRoutes" validate:"gte=0"`
	ArrivalPrefetchStops    int     `yaml:"arrivalPrefetchStops" validate:"gte=0"`
	DuplicateRetries        int     `yaml:"duplicateRetries" validate:"gte=0"`
	DuplicatePenaltySeconds float64 `yaml:"duplicatePenaltySeconds" validate:"gte=0"`
	FastTagSeconds          float64 `yaml:"fastTagSeconds" validate:"gte=0"`
}

// VehiclesConfig contains the vehicle aggregator configuration
type VehiclesConfig struct {
	// Hub stops are high-coverage stops polled through StopMonitoring to
	// discover vehicle positions, since broad VehicleMonitoring queries
	// against the municipal endpoint usually come back empty.
	HubStops        []string `yaml:"hubStops"`
	GhostTTLMinutes int      `yaml:"ghostTTLMinutes" validate:"gte=0"`
	// Optional GTFS-RT VehiclePositions feed used as an alternative source.
	GTFSRTVehiclePositionsURL string `yaml:"gtfsrtVehiclePositionsURL" validate:"omitempty,url"`
}

// StorageConfig contains saved-stop persistence configuration
type StorageConfig struct {
	DatabasePath string `yaml:"databasePath"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	SIRI     SIRIConfig     `yaml:"siri" validate:"required"`
	Planner  PlannerConfig  `yaml:"planner"`
	Vehicles VehiclesConfig `yaml:"vehicles"`
	Storage  StorageConfig  `yaml:"storage"`
}
