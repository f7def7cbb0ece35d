package core

// InstallmentDueDate returns the due date of an installment: origination date
// advanced by the installment number in months. Installment 1 falls one month
// after origination.
func InstallmentDueDate(origination Date, installmentNumber int) Date {
	return Date{Time: origination.AddDate(0, installmentNumber, 0)}
}

// ClassifyPayment derives the paid/late status of a recorded payment from its
// date relative to the installment's due date. Payments on or before the due
// date are paid; anything after is late.
func ClassifyPayment(origination Date, installmentNumber int, paymentDate Date) PaymentStatus {
	due := InstallmentDueDate(origination, installmentNumber)
	if paymentDate.After(due.Time) {
		return PaymentLate
	}
	return PaymentPaid
}
