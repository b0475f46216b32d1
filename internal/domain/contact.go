package domain

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	Name    string
	Phone   string
	Comment string
}
