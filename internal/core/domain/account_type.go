package domain

// Side is the debit or credit side of a posting.
type Side string

const (
	Debit  Side = "DEBIT"
	Credit Side = "CREDIT"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Debit {
		return Credit
	}
	return Debit
}

func (s Side) IsValid() bool {
	return s == Debit || s == Credit
}

// AccountCategory is the top-level classification of an account.
type AccountCategory string

const (
	Asset     AccountCategory = "ASSET"
	Liability AccountCategory = "LIABILITY"
	Equity    AccountCategory = "EQUITY"
	Revenue   AccountCategory = "REVENUE"
	Expense   AccountCategory = "EXPENSE"
)

// NormalBalance returns the side on which accounts of this category grow.
func (c AccountCategory) NormalBalance() Side {
	switch c {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

// CodeRange returns the inclusive range of four-digit base codes reserved for c.
func (c AccountCategory) CodeRange() (int, int) {
	switch c {
	case Asset:
		return 1000, 1999
	case Liability:
		return 2000, 2999
	case Equity:
		return 3000, 3999
	case Revenue:
		return 4000, 4999
	case Expense:
		return 5000, 9999
	}
	return 0, -1
}

// AccountType is a chart-of-accounts subcategory.
type AccountType string

type accountTypeInfo struct {
	category           AccountCategory
	contra             bool
	requiresSubsidiary bool
}

const (
	// Current assets
	Cash                         AccountType = "CASH"
	PettyCash                    AccountType = "PETTY_CASH"
	BankChecking                 AccountType = "BANK_CHECKING"
	BankSavings                  AccountType = "BANK_SAVINGS"
	CashEquivalents              AccountType = "CASH_EQUIVALENTS"
	ShortTermInvestments         AccountType = "SHORT_TERM_INVESTMENTS"
	AccountsReceivable           AccountType = "ACCOUNTS_RECEIVABLE"
	AllowanceForDoubtfulAccounts AccountType = "ALLOWANCE_FOR_DOUBTFUL_ACCOUNTS"
	NotesReceivable              AccountType = "NOTES_RECEIVABLE"
	InterestReceivable           AccountType = "INTEREST_RECEIVABLE"
	OtherReceivables             AccountType = "OTHER_RECEIVABLES"
	Inventory                    AccountType = "INVENTORY"
	RawMaterials                 AccountType = "RAW_MATERIALS"
	WorkInProgress               AccountType = "WORK_IN_PROGRESS"
	FinishedGoods                AccountType = "FINISHED_GOODS"
	PrepaidExpenses              AccountType = "PREPAID_EXPENSES"
	PrepaidInsurance             AccountType = "PREPAID_INSURANCE"
	PrepaidRent                  AccountType = "PREPAID_RENT"
	Deposits                     AccountType = "DEPOSITS"
	OtherCurrentAssets           AccountType = "OTHER_CURRENT_ASSETS"

	// Non-current assets
	Land                     AccountType = "LAND"
	Buildings                AccountType = "BUILDINGS"
	MachineryAndEquipment    AccountType = "MACHINERY_AND_EQUIPMENT"
	Vehicles                 AccountType = "VEHICLES"
	FurnitureAndFixtures     AccountType = "FURNITURE_AND_FIXTURES"
	ComputerEquipment        AccountType = "COMPUTER_EQUIPMENT"
	LeaseholdImprovements    AccountType = "LEASEHOLD_IMPROVEMENTS"
	AccumulatedDepreciation  AccountType = "ACCUMULATED_DEPRECIATION"
	IntangibleAssets         AccountType = "INTANGIBLE_ASSETS"
	Goodwill                 AccountType = "GOODWILL"
	AccumulatedAmortization  AccountType = "ACCUMULATED_AMORTIZATION"
	LongTermInvestments      AccountType = "LONG_TERM_INVESTMENTS"
	DeferredTaxAssets        AccountType = "DEFERRED_TAX_ASSETS"
	OtherNonCurrentAssets    AccountType = "OTHER_NON_CURRENT_ASSETS"
	RightOfUseAssets         AccountType = "RIGHT_OF_USE_ASSETS"
	IntercompanyReceivables  AccountType = "INTERCOMPANY_RECEIVABLES"
	EmployeeAdvances         AccountType = "EMPLOYEE_ADVANCES"
	InputTaxRecoverable      AccountType = "INPUT_TAX_RECOVERABLE"

	// Current liabilities
	AccountsPayable             AccountType = "ACCOUNTS_PAYABLE"
	AccruedLiabilities          AccountType = "ACCRUED_LIABILITIES"
	AccruedSalaries             AccountType = "ACCRUED_SALARIES"
	AccruedInterest             AccountType = "ACCRUED_INTEREST"
	SalesTaxPayable             AccountType = "SALES_TAX_PAYABLE"
	IncomeTaxPayable            AccountType = "INCOME_TAX_PAYABLE"
	PayrollTaxPayable           AccountType = "PAYROLL_TAX_PAYABLE"
	UnearnedRevenue             AccountType = "UNEARNED_REVENUE"
	CustomerDeposits            AccountType = "CUSTOMER_DEPOSITS"
	ShortTermLoans              AccountType = "SHORT_TERM_LOANS"
	CurrentPortionLongTermDebt  AccountType = "CURRENT_PORTION_LONG_TERM_DEBT"
	CreditCardPayable           AccountType = "CREDIT_CARD_PAYABLE"
	DividendsPayable            AccountType = "DIVIDENDS_PAYABLE"
	OtherCurrentLiabilities     AccountType = "OTHER_CURRENT_LIABILITIES"
	IntercompanyPayables        AccountType = "INTERCOMPANY_PAYABLES"

	// Non-current liabilities
	LongTermDebt               AccountType = "LONG_TERM_DEBT"
	BondsPayable               AccountType = "BONDS_PAYABLE"
	DiscountOnBondsPayable     AccountType = "DISCOUNT_ON_BONDS_PAYABLE"
	MortgagePayable            AccountType = "MORTGAGE_PAYABLE"
	LeaseLiabilities           AccountType = "LEASE_LIABILITIES"
	DeferredTaxLiabilities     AccountType = "DEFERRED_TAX_LIABILITIES"
	PensionLiabilities         AccountType = "PENSION_LIABILITIES"
	OtherNonCurrentLiabilities AccountType = "OTHER_NON_CURRENT_LIABILITIES"

	// Equity
	CommonStock                          AccountType = "COMMON_STOCK"
	PreferredStock                       AccountType = "PREFERRED_STOCK"
	AdditionalPaidInCapital              AccountType = "ADDITIONAL_PAID_IN_CAPITAL"
	RetainedEarnings                     AccountType = "RETAINED_EARNINGS"
	TreasuryStock                        AccountType = "TREASURY_STOCK"
	OwnersCapital                        AccountType = "OWNERS_CAPITAL"
	OwnersDrawings                       AccountType = "OWNERS_DRAWINGS"
	AccumulatedOtherComprehensiveIncome  AccountType = "ACCUMULATED_OTHER_COMPREHENSIVE_INCOME"
	CurrentYearEarnings                  AccountType = "CURRENT_YEAR_EARNINGS"
	DividendsDeclared                    AccountType = "DIVIDENDS_DECLARED"

	// Revenue
	SalesRevenue          AccountType = "SALES_REVENUE"
	ServiceRevenue        AccountType = "SERVICE_REVENUE"
	SalesReturns          AccountType = "SALES_RETURNS"
	SalesDiscounts        AccountType = "SALES_DISCOUNTS"
	InterestIncome        AccountType = "INTEREST_INCOME"
	DividendIncome        AccountType = "DIVIDEND_INCOME"
	RentalIncome          AccountType = "RENTAL_INCOME"
	GainOnSaleOfAssets    AccountType = "GAIN_ON_SALE_OF_ASSETS"
	ForeignExchangeGain   AccountType = "FOREIGN_EXCHANGE_GAIN"
	SubscriptionRevenue   AccountType = "SUBSCRIPTION_REVENUE"
	CommissionIncome      AccountType = "COMMISSION_INCOME"
	OtherIncome           AccountType = "OTHER_INCOME"

	// Expense
	CostOfGoodsSold          AccountType = "COST_OF_GOODS_SOLD"
	Purchases                AccountType = "PURCHASES"
	PurchaseReturns          AccountType = "PURCHASE_RETURNS"
	PurchaseDiscounts        AccountType = "PURCHASE_DISCOUNTS"
	FreightIn                AccountType = "FREIGHT_IN"
	SalariesAndWages         AccountType = "SALARIES_AND_WAGES"
	PayrollTaxExpense        AccountType = "PAYROLL_TAX_EXPENSE"
	EmployeeBenefits         AccountType = "EMPLOYEE_BENEFITS"
	RentExpense              AccountType = "RENT_EXPENSE"
	UtilitiesExpense         AccountType = "UTILITIES_EXPENSE"
	InsuranceExpense         AccountType = "INSURANCE_EXPENSE"
	OfficeSupplies           AccountType = "OFFICE_SUPPLIES"
	RepairsAndMaintenance    AccountType = "REPAIRS_AND_MAINTENANCE"
	DepreciationExpense      AccountType = "DEPRECIATION_EXPENSE"
	AmortizationExpense      AccountType = "AMORTIZATION_EXPENSE"
	AdvertisingAndMarketing  AccountType = "ADVERTISING_AND_MARKETING"
	TravelAndEntertainment   AccountType = "TRAVEL_AND_ENTERTAINMENT"
	ProfessionalFees         AccountType = "PROFESSIONAL_FEES"
	BankCharges              AccountType = "BANK_CHARGES"
	InterestExpense          AccountType = "INTEREST_EXPENSE"
	BadDebtExpense           AccountType = "BAD_DEBT_EXPENSE"
	IncomeTaxExpense         AccountType = "INCOME_TAX_EXPENSE"
	LossOnSaleOfAssets       AccountType = "LOSS_ON_SALE_OF_ASSETS"
	ForeignExchangeLoss      AccountType = "FOREIGN_EXCHANGE_LOSS"
	ResearchAndDevelopment   AccountType = "RESEARCH_AND_DEVELOPMENT"
	Telecommunications       AccountType = "TELECOMMUNICATIONS"
	SoftwareSubscriptions    AccountType = "SOFTWARE_SUBSCRIPTIONS"
	OtherExpense             AccountType = "OTHER_EXPENSE"
)

var accountTypes = map[AccountType]accountTypeInfo{
	Cash:                         {category: Asset},
	PettyCash:                    {category: Asset},
	BankChecking:                 {category: Asset},
	BankSavings:                  {category: Asset},
	CashEquivalents:              {category: Asset},
	ShortTermInvestments:         {category: Asset},
	AccountsReceivable:           {category: Asset, requiresSubsidiary: true},
	AllowanceForDoubtfulAccounts: {category: Asset, contra: true},
	NotesReceivable:              {category: Asset},
	InterestReceivable:           {category: Asset},
	OtherReceivables:             {category: Asset},
	Inventory:                    {category: Asset},
	RawMaterials:                 {category: Asset},
	WorkInProgress:               {category: Asset},
	FinishedGoods:                {category: Asset},
	PrepaidExpenses:              {category: Asset},
	PrepaidInsurance:             {category: Asset},
	PrepaidRent:                  {category: Asset},
	Deposits:                     {category: Asset},
	OtherCurrentAssets:           {category: Asset},
	Land:                         {category: Asset},
	Buildings:                    {category: Asset},
	MachineryAndEquipment:        {category: Asset},
	Vehicles:                     {category: Asset},
	FurnitureAndFixtures:         {category: Asset},
	ComputerEquipment:            {category: Asset},
	LeaseholdImprovements:        {category: Asset},
	AccumulatedDepreciation:      {category: Asset, contra: true},
	IntangibleAssets:             {category: Asset},
	Goodwill:                     {category: Asset},
	AccumulatedAmortization:      {category: Asset, contra: true},
	LongTermInvestments:          {category: Asset},
	DeferredTaxAssets:            {category: Asset},
	OtherNonCurrentAssets:        {category: Asset},
	RightOfUseAssets:             {category: Asset},
	IntercompanyReceivables:      {category: Asset, requiresSubsidiary: true},
	EmployeeAdvances:             {category: Asset},
	InputTaxRecoverable:          {category: Asset},

	AccountsPayable:            {category: Liability, requiresSubsidiary: true},
	AccruedLiabilities:         {category: Liability},
	AccruedSalaries:            {category: Liability},
	AccruedInterest:            {category: Liability},
	SalesTaxPayable:            {category: Liability},
	IncomeTaxPayable:           {category: Liability},
	PayrollTaxPayable:          {category: Liability},
	UnearnedRevenue:            {category: Liability},
	CustomerDeposits:           {category: Liability},
	ShortTermLoans:             {category: Liability},
	CurrentPortionLongTermDebt: {category: Liability},
	CreditCardPayable:          {category: Liability},
	DividendsPayable:           {category: Liability},
	OtherCurrentLiabilities:    {category: Liability},
	IntercompanyPayables:       {category: Liability, requiresSubsidiary: true},
	LongTermDebt:               {category: Liability},
	BondsPayable:               {category: Liability},
	DiscountOnBondsPayable:     {category: Liability, contra: true},
	MortgagePayable:            {category: Liability},
	LeaseLiabilities:           {category: Liability},
	DeferredTaxLiabilities:     {category: Liability},
	PensionLiabilities:         {category: Liability},
	OtherNonCurrentLiabilities: {category: Liability},

	CommonStock:                         {category: Equity},
	PreferredStock:                      {category: Equity},
	AdditionalPaidInCapital:             {category: Equity},
	RetainedEarnings:                    {category: Equity},
	TreasuryStock:                       {category: Equity, contra: true},
	OwnersCapital:                       {category: Equity},
	OwnersDrawings:                      {category: Equity, contra: true},
	AccumulatedOtherComprehensiveIncome: {category: Equity},
	CurrentYearEarnings:                 {category: Equity},
	DividendsDeclared:                   {category: Equity, contra: true},

	SalesRevenue:        {category: Revenue},
	ServiceRevenue:      {category: Revenue},
	SalesReturns:        {category: Revenue, contra: true},
	SalesDiscounts:      {category: Revenue, contra: true},
	InterestIncome:      {category: Revenue},
	DividendIncome:      {category: Revenue},
	RentalIncome:        {category: Revenue},
	GainOnSaleOfAssets:  {category: Revenue},
	ForeignExchangeGain: {category: Revenue},
	SubscriptionRevenue: {category: Revenue},
	CommissionIncome:    {category: Revenue},
	OtherIncome:         {category: Revenue},

	CostOfGoodsSold:         {category: Expense},
	Purchases:               {category: Expense},
	PurchaseReturns:         {category: Expense, contra: true},
	PurchaseDiscounts:       {category: Expense, contra: true},
	FreightIn:               {category: Expense},
	SalariesAndWages:        {category: Expense},
	PayrollTaxExpense:       {category: Expense},
	EmployeeBenefits:        {category: Expense},
	RentExpense:             {category: Expense},
	UtilitiesExpense:        {category: Expense},
	InsuranceExpense:        {category: Expense},
	OfficeSupplies:          {category: Expense},
	RepairsAndMaintenance:   {category: Expense},
	DepreciationExpense:     {category: Expense},
	AmortizationExpense:     {category: Expense},
	AdvertisingAndMarketing: {category: Expense},
	TravelAndEntertainment:  {category: Expense},
	ProfessionalFees:        {category: Expense},
	BankCharges:             {category: Expense},
	InterestExpense:         {category: Expense},
	BadDebtExpense:          {category: Expense},
	IncomeTaxExpense:        {category: Expense},
	LossOnSaleOfAssets:      {category: Expense},
	ForeignExchangeLoss:     {category: Expense},
	ResearchAndDevelopment:  {category: Expense},
	Telecommunications:      {category: Expense},
	SoftwareSubscriptions:   {category: Expense},
	OtherExpense:            {category: Expense},
}

// IsValid reports whether t is part of the taxonomy.
func (t AccountType) IsValid() bool {
	_, ok := accountTypes[t]
	return ok
}

// Category returns the top-level category, or "" for unknown types.
func (t AccountType) Category() AccountCategory {
	return accountTypes[t].category
}

// IsContra reports whether t carries the opposite normal balance of its category.
func (t AccountType) IsContra() bool {
	return accountTypes[t].contra
}

// RequiresSubsidiary reports whether t is a control account tracked in a subledger.
func (t AccountType) RequiresSubsidiary() bool {
	return accountTypes[t].requiresSubsidiary
}

// NormalBalance is the side on which t grows.
func (t AccountType) NormalBalance() Side {
	side := t.Category().NormalBalance()
	if t.IsContra() {
		return side.Opposite()
	}
	return side
}

// AccountTypes returns every known type.
func AccountTypes() []AccountType {
	types := make([]AccountType, 0, len(accountTypes))
	for t := range accountTypes {
		types = append(types, t)
	}
	return types
}
