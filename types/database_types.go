package types

import (
	"time"

	"github.com/google/uuid"
)

// Base model to include ID as UUID. IDs are generated in the application,
// not by the database.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	BaseModel
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	Password    string `gorm:"not null" json:"-"`
	FirstName   string `gorm:"not null" json:"first_name"`
	LastName    string `gorm:"not null" json:"last_name"`
	DisplayName string `json:"display_name"`
	PhoneNo     string `json:"phone_no,omitempty"`
	Category    string `gorm:"not null" json:"category"`
	Avatar      string `gorm:"default:''" json:"avatar"`
	Bio         string `gorm:"type:text" json:"bio"`
	PublicKey   string `gorm:"type:text" json:"public_key,omitempty"`
}

// Friendship edge statuses. One row per unordered pair; the row's UserID is
// always the side that initiated the current state.
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipBlocked  = "blocked"
)

type Friendship struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_friendship" json:"user_id"`
	FriendID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_friendship" json:"friend_id"`
	Status   string    `gorm:"not null;default:'pending'" json:"status"`
}

type Yap struct {
	BaseModel
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	Location      string     `json:"location,omitempty"`
	OriginalYapID *uuid.UUID `gorm:"type:uuid;index" json:"original_yap_id,omitempty"`
}

type YapMedia struct {
	BaseModel
	YapID     uuid.UUID `gorm:"type:uuid;not null;index" json:"yap_id"`
	MediaURL  string    `gorm:"not null" json:"media_url"`
	MediaType string    `gorm:"not null" json:"media_type"` // 'image' or 'video'
}

type Reply struct {
	BaseModel
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	YapID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"yap_id"`
	ParentReplyID *uuid.UUID `gorm:"type:uuid;index" json:"parent_reply_id,omitempty"`
	Content       string     `gorm:"type:text;not null" json:"content"`
}

type ReplyMedia struct {
	BaseModel
	ReplyID   uuid.UUID `gorm:"type:uuid;not null;index" json:"reply_id"`
	MediaURL  string    `gorm:"not null" json:"media_url"`
	MediaType string    `gorm:"not null" json:"media_type"`
}

// A like targets a yap XOR a reply. Each pair index only bites for its own
// target column since NULLs compare distinct.
type Like struct {
	BaseModel
	UserID  uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:uq_like_yap;uniqueIndex:uq_like_reply" json:"user_id"`
	YapID   *uuid.UUID `gorm:"type:uuid;index;uniqueIndex:uq_like_yap" json:"yap_id,omitempty"`
	ReplyID *uuid.UUID `gorm:"type:uuid;index;uniqueIndex:uq_like_reply" json:"reply_id,omitempty"`
}

type Hashtag struct {
	BaseModel
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

type YapHashtag struct {
	BaseModel
	YapID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_yap_hashtag" json:"yap_id"`
	HashtagID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_yap_hashtag" json:"hashtag_id"`
}

type UserHashtag struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_user_hashtag" json:"user_id"`
	HashtagID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_user_hashtag" json:"hashtag_id"`
}

// Notification types, written only as a side effect of a graph mutation.
const (
	NotificationLike    = "LIKE"
	NotificationReply   = "REPLY"
	NotificationAccept  = "FOLLOW"
	NotificationMention = "MENTION"
)

type Notification struct {
	BaseModel
	Type        string     `gorm:"not null" json:"type"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipient_id"`
	SenderID    *uuid.UUID `gorm:"type:uuid" json:"sender_id,omitempty"`
	YapID       *uuid.UUID `gorm:"type:uuid" json:"yap_id,omitempty"`
	ReplyID     *uuid.UUID `gorm:"type:uuid" json:"reply_id,omitempty"`
	Read        bool       `gorm:"default:false" json:"read"`
}

type Message struct {
	BaseModel
	SenderID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"sender_id"`
	RecipientID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipient_id"`
	EncryptedContent string     `gorm:"type:text;not null" json:"encrypted_content"`
	ReplyToID        *uuid.UUID `gorm:"type:uuid" json:"reply_to_id,omitempty"`
	Deleted          bool       `gorm:"default:false" json:"deleted"`
}

type ChatMedia struct {
	BaseModel
	MessageID uuid.UUID `gorm:"type:uuid;not null;index" json:"message_id"`
	MediaURL  string    `gorm:"not null" json:"media_url"`
	MediaType string    `gorm:"not null" json:"media_type"`
}

type Reaction struct {
	BaseModel
	MessageID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_user_reaction" json:"message_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_user_reaction" json:"user_id"`
	ReactionType string    `gorm:"not null" json:"reaction_type"`
}

type Event struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"not null" json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DateOfEvent time.Time `json:"date_of_event"`
	EntryFee    string    `json:"entry_fee"`
	Category    string    `gorm:"index" json:"category"`
}

type EventComment struct {
	BaseModel
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	EventID uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	Text    string    `gorm:"not null" json:"text"`
}

type Seller struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	DisplayName string    `gorm:"not null" json:"display_name"`
	IsVerified  bool      `gorm:"default:false" json:"is_verified"`
	About       string    `gorm:"type:text" json:"about"`
	Avatar      string    `json:"avatar,omitempty"`
	PhoneNo     string    `json:"phone_no,omitempty"`
}

type Product struct {
	BaseModel
	SellerID    uuid.UUID `gorm:"type:uuid;not null;index" json:"seller_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ContactInfo string    `json:"contact_info,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	Price       float64   `json:"price"`
	Category    string    `gorm:"index" json:"category"`
	TotalSales  int       `gorm:"default:0" json:"total_sales"`
}

type ProductImage struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	ImageURL  string    `gorm:"not null" json:"image_url"`
}

type ProductVariation struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Name      string    `gorm:"not null" json:"name"`  // e.g. Size, Color
	Value     string    `gorm:"not null" json:"value"` // e.g. Large, Red
	Price     float64   `json:"price"`
	Stock     int       `gorm:"default:0" json:"stock"`
}

type Review struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Text      string    `gorm:"not null" json:"text"`
	Rating    float64   `gorm:"not null" json:"rating"`
}

type Wishlist struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_wishlist" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_wishlist" json:"product_id"`
}

type Cart struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
}

type CartItem struct {
	BaseModel
	CartID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"cart_id"`
	ProductID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	VariationID *uuid.UUID `gorm:"type:uuid" json:"variation_id,omitempty"`
	Quantity    int        `gorm:"default:1" json:"quantity"`
}

type Order struct {
	BaseModel
	UserID           uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Paid             bool      `gorm:"default:false" json:"paid"`
	PaymentReference string    `gorm:"index" json:"payment_reference,omitempty"`
	FirstName        string    `gorm:"not null" json:"first_name"`
	LastName         string    `gorm:"not null" json:"last_name"`
	Email            string    `gorm:"not null" json:"email"`
	Phone            string    `gorm:"not null" json:"phone"`
	Address          string    `gorm:"not null" json:"address"`
	TotalPrice       float64   `gorm:"not null;default:0" json:"total_price"`
}

type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int       `gorm:"default:1" json:"quantity"`
	UnitPrice float64   `gorm:"not null" json:"unit_price"`
}
