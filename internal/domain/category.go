package domain

type Category struct {
	Base          `bson:",inline"`
	NameAr        string `json:"nameAr" bson:"nameAr" validate:"required,min=2,max=64"`
	NameEn        string `json:"nameEn" bson:"nameEn" validate:"required,min=2,max=64"`
	NameTr        string `json:"nameTr" bson:"nameTr" validate:"required,min=2,max=64"`
	Color         string `json:"color,omitempty" bson:"color,omitempty" validate:"omitempty,hexcolor"`
	Slug          string `json:"slug" bson:"slug"`
	Image         string `json:"image,omitempty" bson:"image,omitempty"`
	Icon          string `json:"icon,omitempty" bson:"icon,omitempty"`
	DescriptionAr string `json:"descriptionAr,omitempty" bson:"descriptionAr,omitempty"`
	DescriptionEn string `json:"descriptionEn,omitempty" bson:"descriptionEn,omitempty"`
	DescriptionTr string `json:"descriptionTr,omitempty" bson:"descriptionTr,omitempty"`
}

var (
	CategoryCreatable  = []string{"nameAr", "nameEn", "nameTr", "color", "image", "icon", "descriptionAr", "descriptionEn", "descriptionTr"}
	CategorySearchable = []string{"nameAr", "nameEn", "nameTr"}
)
