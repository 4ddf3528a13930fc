package domain

// Mia is an FAQ entry served by the help assistant.
type Mia struct {
	Base     `bson:",inline"`
	Question string `json:"question" bson:"question" validate:"required,min=3,max=500"`
	Answer   string `json:"answer" bson:"answer" validate:"required,max=5000"`
	Language string `json:"language" bson:"language" validate:"required,oneof=ar en tr"`
	Order    int    `json:"order" bson:"order"`
	IsActive bool   `json:"isActive" bson:"isActive"`
}

var (
	MiaCreatable   = []string{"question", "answer", "language", "order", "isActive"}
	MiaSearchable  = []string{"question", "answer"}
	MiaExactFields = []string{"language"}
)
