package model

type Book struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	PublishYear int    `json:"publish_year"`
}

type Car struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
