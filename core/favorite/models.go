package favorite

// Record is the per-user favorites document, keyed by email.
// Favorites holds event keys (IDs, or names for legacy records).
type Record struct {
	Email     string   `json:"email" firestore:"email" bson:"email"`
	Favorites []string `json:"favorites" firestore:"favorites" bson:"favorites"`
}
