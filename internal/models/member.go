package models

// MemberCount — число членов общины сейчас и одно окно назад.
type MemberCount struct {
	CurrentTotal  int `json:"count"`
	PreviousTotal int `json:"previousCount"`
}
