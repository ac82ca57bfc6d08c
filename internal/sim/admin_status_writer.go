package sim

// AdminStatusWriter allows writers to receive admin UI status updates.
type AdminStatusWriter interface {
	SetAdminStatus(listening bool)
}

// OperatorAware writers accept the operator used for interactive takeoffs
// and altitude changes.
type OperatorAware interface {
	SetOperator(op Operator)
}
