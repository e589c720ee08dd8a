package questrade

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the registration type of an account (e.g. Cash, Margin, TFSA).
type AccountType string

const (
	AccountTypeCash   AccountType = "Cash"
	AccountTypeMargin AccountType = "Margin"
	AccountTypeTFSA   AccountType = "TFSA"
	AccountTypeRRSP   AccountType = "RRSP"
	AccountTypeSRRSP  AccountType = "SRRSP"
	AccountTypeLRRSP  AccountType = "LRRSP"
	AccountTypeLIRA   AccountType = "LIRA"
	AccountTypeLIF    AccountType = "LIF"
	AccountTypeRIF    AccountType = "RIF"
	AccountTypeSRIF   AccountType = "SRIF"
	AccountTypeLRIF   AccountType = "LRIF"
	AccountTypeRRIF   AccountType = "RRIF"
	AccountTypePRIF   AccountType = "PRIF"
	AccountTypeRESP   AccountType = "RESP"
	AccountTypeFRESP  AccountType = "FRESP"
)

// AccountStatus is the operational status of an account.
type AccountStatus string

const (
	AccountStatusActive            AccountStatus = "Active"
	AccountStatusSuspendedClosed   AccountStatus = "Suspended (Closed)"
	AccountStatusSuspendedViewOnly AccountStatus = "Suspended (View Only)"
	AccountStatusLiquidateOnly     AccountStatus = "Liquidate Only"
	AccountStatusClosed            AccountStatus = "Closed"
)

// ClientAccountType is the type of client holding the account.
type ClientAccountType string

const (
	ClientAccountTypeIndividual            ClientAccountType = "Individual"
	ClientAccountTypeJoint                 ClientAccountType = "Joint"
	ClientAccountTypeInformalTrust         ClientAccountType = "Informal Trust"
	ClientAccountTypeCorporation           ClientAccountType = "Corporation"
	ClientAccountTypeInvestmentClub        ClientAccountType = "Investment Club"
	ClientAccountTypeFormalTrust           ClientAccountType = "Formal Trust"
	ClientAccountTypePartnership           ClientAccountType = "Partnership"
	ClientAccountTypeSoleProprietorship    ClientAccountType = "Sole Proprietorship"
	ClientAccountTypeFamily                ClientAccountType = "Family"
	ClientAccountTypeJointAndInformalTrust ClientAccountType = "Joint and Informal Trust"
	ClientAccountTypeInstitution           ClientAccountType = "Institution"
)

// Currency is an ISO currency code as used by the provider.
type Currency string

const (
	CurrencyCAD Currency = "CAD"
	CurrencyUSD Currency = "USD"
)

// Account is a single brokerage account registered to the authenticated user.
type Account struct {
	Type              AccountType       `json:"type"`
	Number            string            `json:"number"`
	Status            AccountStatus     `json:"status"`
	IsPrimary         bool              `json:"isPrimary"`
	IsBilling         bool              `json:"isBilling"`
	ClientAccountType ClientAccountType `json:"clientAccountType"`
}

// Balance holds the balance figures for one currency side of an account.
type Balance struct {
	Currency          Currency        `json:"currency"`
	Cash              decimal.Decimal `json:"cash"`
	MarketValue       decimal.Decimal `json:"marketValue"`
	TotalEquity       decimal.Decimal `json:"totalEquity"`
	BuyingPower       decimal.Decimal `json:"buyingPower"`
	MaintenanceExcess decimal.Decimal `json:"maintenanceExcess"`
	IsRealTime        bool            `json:"isRealTime"`
}

// AccountBalances groups the four balance sets the provider reports per
// account: current and start-of-day, each per-currency and combined.
type AccountBalances struct {
	PerCurrencyBalances    []Balance `json:"perCurrencyBalances"`
	CombinedBalances       []Balance `json:"combinedBalances"`
	SODPerCurrencyBalances []Balance `json:"sodPerCurrencyBalances"`
	SODCombinedBalances    []Balance `json:"sodCombinedBalances"`
}

// Position is an open position in an account.
type Position struct {
	Symbol             string          `json:"symbol"`
	SymbolID           int             `json:"symbolId"`
	OpenQuantity       decimal.Decimal `json:"openQuantity"`
	ClosedQuantity     decimal.Decimal `json:"closedQuantity"`
	CurrentMarketValue decimal.Decimal `json:"currentMarketValue"`
	CurrentPrice       decimal.Decimal `json:"currentPrice"`
	AverageEntryPrice  decimal.Decimal `json:"averageEntryPrice"`
	ClosedPnL          decimal.Decimal `json:"closedPnl"`
	OpenPnL            decimal.Decimal `json:"openPnl"`
	TotalCost          decimal.Decimal `json:"totalCost"`
	IsRealTime         bool            `json:"isRealTime"`
	IsUnderReorg       bool            `json:"isUnderReorg"`
}

// Activity is a single account activity record: a trade, dividend, deposit,
// withdrawal, FX conversion, etc.
type Activity struct {
	TradeDate       time.Time       `json:"tradeDate"`
	TransactionDate time.Time       `json:"transactionDate"`
	SettlementDate  time.Time       `json:"settlementDate"`
	Action          string          `json:"action"`
	Symbol          string          `json:"symbol"`
	SymbolID        int             `json:"symbolId"`
	Description     string          `json:"description"`
	Currency        Currency        `json:"currency"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	GrossAmount     decimal.Decimal `json:"grossAmount"`
	Commission      decimal.Decimal `json:"commission"`
	NetAmount       decimal.Decimal `json:"netAmount"`
	Type            string          `json:"type"`
}

// Execution is a single fill in an account.
type Execution struct {
	ID                   int             `json:"id"`
	OrderID              int             `json:"orderId"`
	Symbol               string          `json:"symbol"`
	SymbolID             int             `json:"symbolId"`
	Quantity             decimal.Decimal `json:"quantity"`
	Side                 string          `json:"side"`
	Price                decimal.Decimal `json:"price"`
	OrderChainID         int             `json:"orderChainId"`
	Timestamp            time.Time       `json:"timestamp"`
	Notes                string          `json:"notes"`
	Commission           decimal.Decimal `json:"commission"`
	ExecutionFee         decimal.Decimal `json:"executionFee"`
	SECFee               decimal.Decimal `json:"secFee"`
	CanadianExecutionFee decimal.Decimal `json:"canadianExecutionFee"`
	ParentID             int             `json:"parentId"`
}
