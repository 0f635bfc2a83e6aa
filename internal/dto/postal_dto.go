package dto

type PostalCodeResponse struct {
	Zipcode string `json:"zipcode"`
	City    string `json:"city"`
	State   string `json:"state"`
}
