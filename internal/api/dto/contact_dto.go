package dto

// ContactRequest payload for the website contact form.
type ContactRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Comment string `json:"comment"`
}
