package observability

const (
	MUsecaseRequests         = "usecase_requests_total"
	MUsecaseDuration         = "usecase_duration_seconds"
	MHTTPRequests            = "http_requests_total"
	MHTTPRequestDuration     = "http_request_duration_seconds"
	MExternalRequests        = "external_requests_total"
	MExternalRequestDuration = "external_request_duration_seconds"
	MOrdersSubmitted         = "orders_submitted_total"
)
