package core

import (
	"strconv"
	"time"
)

// Indonesian calendar names, indexed by time.Weekday and time.Month-1.
var (
	DayNames = [7]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

	MonthShort = [12]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

	MonthLong = [12]string{"Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli", "Agustus", "September", "Oktober", "November", "Desember"}
)

func DayName(d time.Weekday) string {
	return DayNames[d]
}

func ShortMonth(m time.Month) string {
	return MonthShort[m-1]
}

func LongMonth(m time.Month) string {
	return MonthLong[m-1]
}

// ShortLabel formats a date as "20 Nov".
func (d Date) ShortLabel() string {
	return strconv.Itoa(d.Day()) + " " + ShortMonth(d.Month())
}
