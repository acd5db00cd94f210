package contract

type CNPJResponse struct {
	CNPJ        string `json:"cnpj"`
	LegalName   string `json:"legal_name"`
	TradeName   string `json:"trade_name"`
	LegalNature string `json:"legal_nature"`
	RegStatus   string `json:"registration_status"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	Cached      bool   `json:"cached"`
}
