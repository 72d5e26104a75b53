package order

import (
	"github.com/yanun0323/errors"

	"tradecore/internal/model/enum"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

// transitions encodes the allowed status moves. Self-transitions are only
// legal where listed (repeated partial fills).
var transitions = map[enum.OrderStatus][]enum.OrderStatus{
	enum.OrderStatusInitialized: {
		enum.OrderStatusDenied,
		enum.OrderStatusEmulated,
		enum.OrderStatusReleased,
		enum.OrderStatusSubmitted,
		enum.OrderStatusRejected,
		enum.OrderStatusCanceled,
	},
	enum.OrderStatusEmulated: {
		enum.OrderStatusReleased,
		enum.OrderStatusCanceled,
		enum.OrderStatusExpired,
	},
	enum.OrderStatusReleased: {
		enum.OrderStatusSubmitted,
	},
	enum.OrderStatusSubmitted: {
		enum.OrderStatusAccepted,
		enum.OrderStatusRejected,
		enum.OrderStatusCanceled,
	},
	enum.OrderStatusAccepted: {
		enum.OrderStatusTriggered,
		enum.OrderStatusPendingUpdate,
		enum.OrderStatusPendingCancel,
		enum.OrderStatusPartiallyFilled,
		enum.OrderStatusFilled,
		enum.OrderStatusCanceled,
		enum.OrderStatusExpired,
	},
	enum.OrderStatusTriggered: {
		enum.OrderStatusPartiallyFilled,
		enum.OrderStatusFilled,
		enum.OrderStatusPendingCancel,
		enum.OrderStatusCanceled,
		enum.OrderStatusExpired,
	},
	enum.OrderStatusPendingUpdate: {
		enum.OrderStatusAccepted,
		enum.OrderStatusTriggered,
	},
	enum.OrderStatusPendingCancel: {
		enum.OrderStatusCanceled,
		enum.OrderStatusRejected,
	},
	enum.OrderStatusPartiallyFilled: {
		enum.OrderStatusPartiallyFilled,
		enum.OrderStatusFilled,
		enum.OrderStatusPendingCancel,
		enum.OrderStatusCanceled,
		enum.OrderStatusExpired,
	},
}

// TransitionAllowed reports whether from -> to is a legal status move.
func TransitionAllowed(from, to enum.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
