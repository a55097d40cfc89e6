package sql

import "testing"

func BenchmarkSanitize(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Sanitize("created_at; DROP TABLE users --")
	}
}

func BenchmarkCompileConditions(b *testing.B) {
	conds := Conditions{
		EQ("status", "active"),
		In("role", "admin", "owner", "member"),
		GTE("score", 1.5),
		IsNull("deleted_at"),
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = CompileConditions(conds, "ssd")
	}
}

func BenchmarkSelectStmt(b *testing.B) {
	where := Conditions{GT("age", 30), IsNull("deleted_at")}
	order := Order{Desc("created_at"), Asc("id")}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = SelectStmt("users", []string{"id", "name", "email"}, where, "i", order, Page{Limit: 10, Offset: 20})
	}
}

func BenchmarkInsertStmt_Upsert(b *testing.B) {
	values := Assignments{
		Set("email", "a@example.com"),
		Set("age", 30),
		Set("first_name", "Ariel"),
		Set("created_at", "2009-11-10 23:00:00"),
	}
	upsert := Assignments{Set("age", 31)}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = InsertStmt("users", values, "siss", upsert, "i")
	}
}

func BenchmarkUpdateStmt(b *testing.B) {
	set := Assignments{Set("name", "bob"), Set("score", 2.5)}
	where := Conditions{In("id", 1, 2, 3)}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = UpdateStmt("users", set, where, "sdi")
	}
}
