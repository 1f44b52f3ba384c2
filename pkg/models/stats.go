package models

var MonthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type BookStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Lent      int `json:"lent"`
	Overdue   int `json:"overdue"`
}

type LendingStats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Overdue int `json:"overdue"`
}

type ChartData struct {
	Labels [12]string `json:"labels"`
	Values [12]int    `json:"values"`
}

type DashboardStats struct {
	Books     BookStats    `json:"books"`
	Lendings  LendingStats `json:"lendings"`
	ChartData ChartData    `json:"chartData"`
}
