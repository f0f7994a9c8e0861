package auth

import "testing"

func TestPasswordHashAndCompare(t *testing.T) {
	hashed, err := HashPassword("hunter2", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := ComparePassword(hashed, "hunter2"); err != nil {
		t.Fatalf("ComparePassword: %v", err)
	}
	if err := ComparePassword(hashed, "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}
}
