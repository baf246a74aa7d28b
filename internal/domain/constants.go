package domain

// MaxPurchaseQuantity is the largest quantity accepted by a single purchase.
const MaxPurchaseQuantity = 100
