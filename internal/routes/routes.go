package routes

const (
	// Health and metrics
	Health  = "/health"
	Metrics = "/metrics"

	// Users
	UsersBase     = "/api/v1/users"
	UsersRegister = "/api/v1/users/register"
	UsersVerify   = "/api/v1/users/{userID}/verify"

	// Properties and units
	PropertiesBase  = "/api/v1/properties"
	PropertyReview  = "/api/v1/properties/{propertyID}/review"
	PropertyUnits   = "/api/v1/properties/{propertyID}/units"
	UnitByID        = "/api/v1/units/{unitID}"
	UnitMaintenance = "/api/v1/units/{unitID}/maintenance"

	// Lease lifecycle
	LeasesBase     = "/api/v1/leases"
	LeaseApply     = "/api/v1/leases/apply"
	LeaseDecision  = "/api/v1/leases/{leaseID}/decision"
	LeaseTerminate = "/api/v1/leases/{leaseID}/terminate"

	// Billing
	InvoicesBase = "/api/v1/invoices"

	// Payments; the callback is hit by the mobile-money gateway, not users
	PaymentsBase     = "/api/v1/payments"
	PaymentsCallback = "/api/v1/payments/callback"

	// Notifications
	NotificationsBase    = "/api/v1/notifications"
	NotificationMarkRead = "/api/v1/notifications/{notificationID}/read"
)
