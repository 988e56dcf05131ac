package models

import (
    "gorm.io/gorm"
)

type User struct {
    gorm.Model
    Email          string `gorm:"uniqueIndex;not null"`
    Password       string `gorm:"not null"`
    FirstName      string
    LastName       string
    // IANA zone name (e.g. "America/New_York"); empty means UTC.
    // Daily summaries and streaks bucket by this zone, not by UTC.
    Timezone       string `gorm:"size:64"`
    ProfilePicture string
    HeightCm       float64
    WeightKg       float64
    Onboarded      bool
    Disabled       bool `gorm:"default:false"`
}
