package model

import "time"

// User represents a customer or admin account
type User struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	Phone         string    `json:"phone,omitempty"`
	Avatar        string    `json:"avatar,omitempty"`
	IsActive      bool      `json:"isActive"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// OrderItem is one rented product line of an order
type OrderItem struct {
	Product        *Product `json:"product"`
	Quantity       int      `json:"quantity"`
	RentalDuration int      `json:"rentalDuration"`
	Price          float64  `json:"price"`
	TotalPrice     float64  `json:"totalPrice"`
}

// Order represents a customer rental order
type Order struct {
	ID            string        `json:"_id"`
	OrderNumber   string        `json:"orderNumber"`
	User          *User         `json:"user"`
	Items         []OrderItem   `json:"items"`
	PaymentMethod string        `json:"paymentMethod"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	OrderStatus   OrderStatus   `json:"orderStatus"`
	Subtotal      float64       `json:"subtotal"`
	TotalAmount   float64       `json:"totalAmount"`
	Notes         string        `json:"notes,omitempty"`
	AdminNotes    string        `json:"adminNotes,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// OrderStatusInput is the payload of an order status update
type OrderStatusInput struct {
	OrderStatus   OrderStatus   `json:"orderStatus"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
	AdminNotes    string        `json:"adminNotes,omitempty"`
}

// DashboardStats merges the user and order summary aggregates
type DashboardStats struct {
	TotalUsers      int     `json:"totalUsers"`
	ActiveUsers     int     `json:"activeUsers"`
	InactiveUsers   int     `json:"inactiveUsers"`
	AdminUsers      int     `json:"adminUsers"`
	RegularUsers    int     `json:"regularUsers"`
	TotalOrders     int     `json:"totalOrders"`
	PendingOrders   int     `json:"pendingOrders"`
	CompletedOrders int     `json:"completedOrders"`
	CancelledOrders int     `json:"cancelledOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
}

// AuthResponse is the gateway login result
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Credentials are forwarded to the gateway login endpoint
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
