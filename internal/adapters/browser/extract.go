package browser

// The class names below come from the Google Business Profile reviews
// listing and change whenever Google reshuffles its frontend; keep them
// in one place.
const extractReviewsJS = `
(() => {
  const out = [];
  for (const c of document.querySelectorAll('.DsOcnf')) {
    const textEl = c.querySelector('.oiQd1c');
    const dateEl = c.querySelector('.Wxf3Bf.wUfJz');
    const storeEl = c.querySelector('.mjZtse.wjs4p');
    const nameEl = c.querySelector('.z2S9Hc');
    const starBox = c.querySelector('.YMWsEc.dv8URd');
    out.push({
      reviewer: nameEl ? nameEl.textContent.trim() : '',
      text: textEl ? textEl.textContent.trim() : '',
      date: dateEl ? dateEl.textContent.trim() : '',
      store: storeEl ? storeEl.textContent.trim() : '',
      stars: starBox ? starBox.querySelectorAll('.DPvwYc.L12a3c.z3FsAc').length : 0,
    });
  }
  return out;
})()
`

const clickNextJS = `
(() => {
  const btn = document.querySelector('.VfPpkd-Bz112c-LgbsSe.yHy1rc.eT1oJ.QDwDD.mN1ivc.vX5N7b');
  if (!btn || btn.disabled || btn.offsetParent === null) return false;
  btn.scrollIntoView(true);
  btn.click();
  return true;
})()
`
