// Package dto defines the wire formats of the KIS Open API.
package dto

// TokenRequest is the body of POST /oauth2/token.
type TokenRequest struct {
	GrantType string `json:"grant_type"`
	AppKey    string `json:"appkey"`
	AppSecret string `json:"appsecret"`
}

// TokenResponse is the access token issued by KIS.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
	ExpiredAt   string `json:"access_token_token_expired"`
}

// DailyPriceResponse is the response of inquire-daily-itemchartprice.
// RtCd is "0" on success; every numeric field is encoded as a string.
type DailyPriceResponse struct {
	RtCd    string       `json:"rt_cd"`
	MsgCd   string       `json:"msg_cd"`
	Msg1    string       `json:"msg1"`
	Output1 []DailyPrice `json:"output1"`
	Output2 *Summary     `json:"output2"`
}

// DailyPrice is one trading day.
type DailyPrice struct {
	BusinessDate string `json:"stck_bsop_date"` // YYYYMMDD
	Open         string `json:"stck_oprc"`
	High         string `json:"stck_hgpr"`
	Low          string `json:"stck_lwpr"`
	Close        string `json:"stck_clpr"`
	Volume       string `json:"acml_vol"`
	ChangeAmount string `json:"prdy_vrss"`
	ChangeSign   string `json:"prdy_vrss_sign"`
	ChangeRate   string `json:"prdy_ctrt"` // percent
}

// Summary is the current quote returned alongside the daily rows.
type Summary struct {
	CurrentPrice string `json:"stck_prpr"`
	ChangeAmount string `json:"prdy_vrss"`
	ChangeRate   string `json:"prdy_ctrt"`
}
