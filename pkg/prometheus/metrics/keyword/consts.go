package keyword

var (
	TotalHttpRequestsMetricName    = "pool_http_requests_total"
	TotalHttpResponsesMetricName   = "pool_http_responses_total"
	HttpResponseStatusesMetricName = "pool_http_response_statuses"
	HttpResponseTimeMsMetricName   = "pool_http_response_time_ms"

	PoolAvailableMetricName = "pool_available"
	PoolInUseMetricName     = "pool_in_use"
	PoolSizeMetricName      = "pool_size"
	PoolCapacityMetricName  = "pool_capacity"
	PoolHitsMetricName      = "pool_hits_total"
	PoolMissesMetricName    = "pool_misses_total"
	PoolCleanupsMetricName  = "pool_cleanups_total"
	PoolTimeoutsMetricName  = "pool_timeouts_total"
	PoolWaitsMetricName     = "pool_waits_total"
	PoolPeakUsageMetricName = "pool_peak_usage"
)
