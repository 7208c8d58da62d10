package events

const (
	TopicOrderCreated    = "order.created"
	TopicPaymentCaptured = "order.payment.captured"
)

// Partition key = order id, so every event of one order stays ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
