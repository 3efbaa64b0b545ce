package suumo

import (
	"testing"

	"suumo-scraper/utils"
)

const samplePage = `
<html><body>
<div class="property_unit">
  <div class="property_unit-content">
    <a href="/ms/chuko/tokyo/sc_shibuya/nc_12345678/">グランドマンション渋谷</a>
    <dl class="dottable">
      <dt>物件名</dt><dd class="dottable-vm">グランドマンション渋谷</dd>
    </dl>
    <dl class="dottable">
      <dt>販売価格</dt><dd><span class="dottable-value">3500万円</span></dd>
    </dl>
    <dl class="dottable"><dt>所在地</dt><dd>東京都渋谷区渋谷1-1-1</dd></dl>
    <dl class="dottable"><dt>沿線・駅</dt><dd>山手線「渋谷」徒歩5分</dd></dl>
    <dl class="dottable"><dt>専有面積</dt><dd>65.5m2（壁芯）</dd></dl>
    <dl class="dottable"><dt>間取り</dt><dd>2LDK</dd></dl>
    <dl class="dottable"><dt>築年月</dt><dd>2005年3月</dd></dl>
  </div>
</div>
<div class="property_unit">
  <div class="property_unit-content">
    <a href="https://suumo.jp/ms/chuko/tokyo/sc_nakano/nc_87654321/">ハイツ中野</a>
    <dl class="dottable">
      <dt>物件名</dt><dd class="dottable-vm">ハイツ中野</dd>
    </dl>
    <dl class="dottable">
      <dt>販売価格</dt><dd><span class="dottable-value">2800万円</span></dd>
    </dl>
    <dl class="dottable"><dt>所在地</dt><dd>東京都中野区中野2-2-2</dd></dl>
  </div>
</div>
<div class="property_unit">
  <div class="property_unit-content">
    <dl class="dottable">
      <dt>物件名</dt><dd class="dottable-vm">価格欠落マンション</dd>
    </dl>
  </div>
</div>
</body></html>`

func TestExtractListings(t *testing.T) {
	e := NewExtractor(utils.NewLogger())

	listings, err := e.Extract([]byte(samplePage))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	// The third card has no price node and must be skipped without
	// aborting the rest of the page.
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}

	first := listings[0]
	if first.Name != "グランドマンション渋谷" {
		t.Errorf("Name: got %q", first.Name)
	}
	if first.Price != "3500万円" {
		t.Errorf("Price: got %q", first.Price)
	}
	if first.Address != "東京都渋谷区渋谷1-1-1" {
		t.Errorf("Address: got %q", first.Address)
	}
	if first.Access != "山手線「渋谷」徒歩5分" {
		t.Errorf("Access: got %q", first.Access)
	}
	if first.Area != "65.5m2（壁芯）" {
		t.Errorf("Area: got %q", first.Area)
	}
	if first.Layout != "2LDK" {
		t.Errorf("Layout: got %q", first.Layout)
	}
	if first.Construction != "2005年3月" {
		t.Errorf("Construction: got %q", first.Construction)
	}
}

func TestExtractPrefixesRelativeURL(t *testing.T) {
	e := NewExtractor(utils.NewLogger())

	listings, err := e.Extract([]byte(samplePage))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := "https://suumo.jp/ms/chuko/tokyo/sc_shibuya/nc_12345678/"
	if listings[0].URL != want {
		t.Errorf("relative URL: got %q, want %q", listings[0].URL, want)
	}

	// Absolute hrefs pass through untouched.
	want = "https://suumo.jp/ms/chuko/tokyo/sc_nakano/nc_87654321/"
	if listings[1].URL != want {
		t.Errorf("absolute URL: got %q, want %q", listings[1].URL, want)
	}
}

func TestExtractOmitsAbsentLabels(t *testing.T) {
	e := NewExtractor(utils.NewLogger())

	listings, err := e.Extract([]byte(samplePage))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	second := listings[1]
	if second.Access != "" || second.Area != "" || second.Construction != "" {
		t.Errorf("absent labels should yield empty fields, got %+v", second)
	}
	if second.Address == "" {
		t.Error("present label 所在地 should be extracted")
	}
}

func TestExtractEmptyPage(t *testing.T) {
	e := NewExtractor(utils.NewLogger())

	listings, err := e.Extract([]byte("<html><body><p>該当する物件がありません</p></body></html>"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(listings) != 0 {
		t.Errorf("expected 0 listings on an empty page, got %d", len(listings))
	}
}
