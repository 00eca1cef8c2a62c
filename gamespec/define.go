package gamespec

// GID 遊戲唯一識別碼
type GID int

// PolicyKey Wild 結算策略的註冊鍵，用於對應策略實作
type PolicyKey string
