package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldLoanID       = "loan_id"
	FieldPaymentID    = "payment_id"
	FieldMemberID     = "member_id"
	FieldSnapshotID   = "snapshot_id"
	FieldInstallment  = "installment"
	FieldAmountCents  = "amount_cents"
	FieldCashCategory = "category"
	FieldYear         = "year"
	FieldMonth        = "month"
)

// Components defines standard component names
const (
	ComponentApp          = "app"
	ComponentHTTP         = "http"
	ComponentLoan         = "loan"
	ComponentContribution = "contribution"
	ComponentCash         = "cash"
	ComponentReport       = "report"
	ComponentStorage      = "storage"
	ComponentAMQP         = "amqp"
	ComponentWorker       = "worker"
	ComponentBackend      = "backend"
	ComponentTrace        = "trace"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpList      = "list"
	OpReconcile = "reconcile"
	OpGenerate  = "generate"
	OpSave      = "save"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)
