package eval

// Summary is the final report of a run.
type Summary struct {
	RequestsProcessed int `json:"requests_processed"`
	Assigned          int `json:"assigned"`
	TripsCompleted    int `json:"trips_completed"`
	ForcedCompletions int `json:"forced_completions"`
	ParseFailures     int `json:"parse_failures"`
	RoutingFailures   int `json:"routing_failures"`

	OriginZoneAccuracy     float64 `json:"origin_zone_accuracy"`
	DestZoneAccuracy       float64 `json:"dest_zone_accuracy"`
	TimeMatchRate          float64 `json:"time_match_rate"`
	RequirementMatchRate   float64 `json:"requirement_match_rate"`
	MeanLocationErrorMiles float64 `json:"mean_location_error_miles"`

	TotalRevenue      float64 `json:"total_revenue"`
	IdleCost          float64 `json:"idle_cost"`
	PenaltyCost       float64 `json:"penalty_cost"`
	NetRevenue        float64 `json:"net_revenue"`
	MeanPickupMinutes float64 `json:"mean_pickup_minutes"`
	MeanDeadheadRatio float64 `json:"mean_deadhead_ratio"`

	ParsingScore float64 `json:"parsing_score"`
	RoutingScore float64 `json:"routing_score"`
	OverallScore float64 `json:"overall_score"`
}
